// README: One-shot chat against the pet transport prompt. Uses whichever providers have keys.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"petlove/internal/ai"
	"petlove/internal/logging"
)

func main() {
	_ = godotenv.Load()
	log := logging.NewLogger(os.Getenv("PETLOVE_LOG_LEVEL"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var providers []ai.Provider
	if gemini, err := ai.NewGeminiProvider(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL")); err == nil {
		defer gemini.Close()
		providers = append(providers, gemini)
	}
	if openai, err := ai.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"), ""); err == nil {
		providers = append(providers, openai)
	}
	if len(providers) == 0 {
		fmt.Fprintln(os.Stderr, "set GEMINI_API_KEY or OPENAI_API_KEY")
		os.Exit(1)
	}

	userMessage := "Magkano po from Makati to Quezon City, dalawang maliit na aso, car?"
	if len(os.Args) > 1 {
		userMessage = strings.Join(os.Args[1:], " ")
	}
	fmt.Printf("User: %s\n", userMessage)

	reply, provider, err := ai.NewFallback(log, providers...).ReplyFrom(ctx, ai.Request{
		System:      ai.PetTransportPrompt,
		Message:     userMessage,
		Temperature: ai.DefaultTemperature,
		MaxTokens:   ai.DefaultMaxTokens,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("AI Reply (%s): %s\n", provider, reply)
}
