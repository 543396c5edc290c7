// README: FCM topic notification sent to admins when a booking is created.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"firebase.google.com/go/v4/messaging"
)

const DefaultAdminTopic = "admins"

// MessageSender is the part of *messaging.Client the notifier uses.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMNotifier struct {
	sender MessageSender
	topic  string
	log    *slog.Logger
}

func NewFCMNotifier(sender MessageSender, topic string, log *slog.Logger) *FCMNotifier {
	if topic == "" {
		topic = DefaultAdminTopic
	}
	if log == nil {
		log = slog.Default()
	}
	return &FCMNotifier{sender: sender, topic: topic, log: log}
}

func (n *FCMNotifier) BookingCreated(ctx context.Context, b *Booking) error {
	msg := &messaging.Message{
		Topic: n.topic,
		Data: map[string]string{
			"type":         "new_booking",
			"booking_id":   string(b.ID),
			"vehicle_type": string(b.VehicleType),
			"pet_size":     string(b.PetSize),
			"pet_count":    strconv.Itoa(b.PetCount),
			"fare":         strconv.FormatInt(b.Fare.Amount, 10),
			"currency":     b.Fare.Currency,
		},
		Notification: &messaging.Notification{
			Title: "New pet transport booking",
			Body:  fmt.Sprintf("%d %s pet(s) by %s, fare %s %d", b.PetCount, b.PetSize, b.VehicleType, b.Fare.Currency, b.Fare.Amount),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	messageID, err := n.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending FCM to topic %s: %w", n.topic, err)
	}
	n.log.InfoContext(ctx, "booking notification sent", "booking_id", string(b.ID), "message_id", messageID)
	return nil
}
