// README: Booking aggregate and status definitions.
package booking

import (
	"slices"
	"time"

	"petlove/internal/modules/pricing"
	"petlove/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusInTransit Status = "in_transit"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(v string) (Status, bool) {
	s := Status(v)
	switch s {
	case StatusPending, StatusConfirmed, StatusInTransit, StatusCompleted, StatusCancelled:
		return s, true
	}
	return "", false
}

type Booking struct {
	ID             types.ID            `json:"id"`
	UserID         string              `json:"user_id"`
	Status         Status              `json:"status"`
	StatusVersion  int                 `json:"status_version"`
	Pickup         types.Point         `json:"pickup"`
	Dropoff        types.Point         `json:"dropoff"`
	PickupAddress  string              `json:"pickup_address"`
	DropoffAddress string              `json:"dropoff_address"`
	PickupName     string              `json:"pickup_name"`
	PickupContact  string              `json:"pickup_contact"`
	DropoffName    string              `json:"dropoff_name"`
	DropoffContact string              `json:"dropoff_contact"`
	VehicleType    pricing.VehicleType `json:"vehicle_type"`
	PetSize        pricing.PetSize     `json:"pet_size"`
	PetCount       int                 `json:"pet_count"`
	TransportDate  time.Time           `json:"transport_date"`
	Notes          string              `json:"notes,omitempty"`
	DistanceKm     float64             `json:"distance"`
	BaseFare       types.Money         `json:"base_fare"`
	ExtraCharge    types.Money         `json:"extra_charge"`
	Fare           types.Money         `json:"fare"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type Event struct {
	ID         int64
	BookingID  types.ID
	FromStatus Status
	ToStatus   Status
	ActorID    string
	CreatedAt  time.Time
}

// Stats counts bookings per status for the dashboard.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	InTransit int `json:"in_transit"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// StatsFromCounts folds per-status counts into Stats. Unknown statuses still count toward Total.
func StatsFromCounts(counts map[Status]int) Stats {
	var s Stats
	for status, n := range counts {
		s.Total += n
		switch status {
		case StatusPending:
			s.Pending = n
		case StatusConfirmed:
			s.Confirmed = n
		case StatusInTransit:
			s.InTransit = n
		case StatusCompleted:
			s.Completed = n
		case StatusCancelled:
			s.Cancelled = n
		}
	}
	return s
}

// AllowedTransitions is the booking lifecycle. Completed and cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(next, to)
}
