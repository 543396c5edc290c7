// README: Event sign-ups. Each registration carries a sequential discount voucher.
package event

import (
	"errors"
	"strconv"
	"time"
)

var (
	ErrInvalid           = errors.New("invalid event registration")
	ErrAlreadyRegistered = errors.New("email is already registered for the event")
	ErrNotFound          = errors.New("event registration not found")
)

// VoucherPrefix must match the generated voucher_code column.
const VoucherPrefix = "PLT50OFF-"

// Registration is one row of event_registrations. VoucherNumber and
// VoucherCode are assigned by the database on insert.
type Registration struct {
	ID            int64     `json:"id"`
	VoucherNumber int64     `json:"voucher_number"`
	VoucherCode   string    `json:"voucher_code"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	Facebook      string    `json:"facebook,omitempty"`
	Instagram     string    `json:"instagram,omitempty"`
	City          string    `json:"city"`
	RegisteredAt  time.Time `json:"registered_at"`
}

func VoucherCode(n int64) string {
	return VoucherPrefix + strconv.FormatInt(n, 10)
}
