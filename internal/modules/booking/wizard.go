// README: Three-step booking form validation (route, pets, contacts and date).
package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"petlove/internal/modules/pricing"
	"petlove/internal/types"
)

const (
	StepRoute    = 1
	StepPets     = 2
	StepContacts = 3
)

// ErrIncomplete carries the message shown when a step does not validate.
var ErrIncomplete = errors.New("complete all fields")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Draft is the booking form as the client fills it in.
type Draft struct {
	Pickup         *types.Point        `json:"pickup"`
	Dropoff        *types.Point        `json:"dropoff"`
	PickupAddress  string              `json:"pickup_address"`
	DropoffAddress string              `json:"dropoff_address"`
	VehicleType    pricing.VehicleType `json:"vehicle_type"`
	PetSize        pricing.PetSize     `json:"pet_size"`
	PetCount       int                 `json:"pet_count"`
	PickupName     string              `json:"pickup_name" validate:"required,max=120"`
	PickupContact  string              `json:"pickup_contact" validate:"required,max=40"`
	DropoffName    string              `json:"dropoff_name" validate:"required,max=120"`
	DropoffContact string              `json:"dropoff_contact" validate:"required,max=40"`
	TransportDate  *time.Time          `json:"transport_date" validate:"required"`
	Notes          string              `json:"notes" validate:"max=500"`
}

var contactFields = []string{"PickupName", "PickupContact", "DropoffName", "DropoffContact", "TransportDate", "Notes"}

// ValidateStep checks the fields owned by one step.
func ValidateStep(step int, d Draft) error {
	switch step {
	case StepRoute:
		if d.Pickup == nil || d.Dropoff == nil {
			return fmt.Errorf("%w: pickup and drop-off locations are required", ErrIncomplete)
		}
		return nil
	case StepPets:
		if err := pricing.CheckCapacity(d.PetSize, d.VehicleType, d.PetCount); err != nil {
			return fmt.Errorf("%w: %w", ErrIncomplete, err)
		}
		return nil
	case StepContacts:
		if err := validate.StructPartial(d, contactFields...); err != nil {
			return fmt.Errorf("%w: %w", ErrIncomplete, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown step %d", ErrIncomplete, step)
	}
}

// ValidateAll checks every step in order, returning the first failure.
func ValidateAll(d Draft) error {
	for step := StepRoute; step <= StepContacts; step++ {
		if err := ValidateStep(step, d); err != nil {
			return err
		}
	}
	return nil
}

// Wizard tracks the current step. Steps stay within 1..3.
type Wizard struct {
	step int
}

func NewWizard() *Wizard {
	return &Wizard{step: StepRoute}
}

// ResumeWizard starts at the given step, clamped to the valid range.
func ResumeWizard(step int) *Wizard {
	return &Wizard{step: clampStep(step)}
}

func (w *Wizard) Step() int {
	return w.step
}

// Next advances when the current step validates. On failure the step is unchanged.
func (w *Wizard) Next(d Draft) error {
	if err := ValidateStep(w.step, d); err != nil {
		return err
	}
	w.step = clampStep(w.step + 1)
	return nil
}

func (w *Wizard) Back() {
	w.step = clampStep(w.step - 1)
}

func clampStep(step int) int {
	return min(max(step, StepRoute), StepContacts)
}
