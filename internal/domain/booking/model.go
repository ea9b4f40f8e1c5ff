package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Cancellation is terminal and keeps the row; history
// survives for audit while the hour becomes bookable again.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var ValidStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Errors surfaced by the booking API.
var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotOwner            = errors.New("appointment belongs to another patient")
	ErrSlotNotOffered      = errors.New("doctor does not offer this slot")
	ErrSlotInPast          = errors.New("appointment must start in the future")
	ErrSlotTaken           = errors.New("slot is already booked")
	ErrAlreadyCancelled    = errors.New("appointment is already cancelled")
	ErrInvalidTransition   = errors.New("appointment status does not allow this operation")
)

// Appointment is a one-hour visit on the ledger. The end is derived, never
// stored.
type Appointment struct {
	ID             uuid.UUID `json:"id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	Status         string    `json:"status"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// End returns the exclusive end of the appointment's hour.
func (a *Appointment) End() time.Time {
	return a.ScheduledStart.Add(time.Hour)
}

// Active reports whether the appointment still occupies its hour.
func (a *Appointment) Active() bool {
	return a.Status != StatusCancelled
}
