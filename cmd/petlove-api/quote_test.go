package main

import (
	"errors"
	"testing"

	"petlove/internal/modules/pricing"
)

func TestQuote(t *testing.T) {
	q, err := quote(12.3, "car", "small", 3)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.TotalFare.Amount != 1050 {
		t.Errorf("expected 1050, got %d", q.TotalFare.Amount)
	}

	if _, err := quote(5, "motorcycle", "large", 2); !errors.Is(err, pricing.ErrValidation) {
		t.Errorf("expected capacity rejection, got %v", err)
	}
	if _, err := quote(5, "van", "small", 1); !errors.Is(err, pricing.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
