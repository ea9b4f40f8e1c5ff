package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// ListByPatient returns the patient's appointments in ascending start
	// order. An empty status matches every status.
	ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	// ListByDoctorAndRange returns appointments whose hour intersects
	// [from, to), all statuses, ascending start order.
	ListByDoctorAndRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	// FindOverlapping returns non-cancelled appointments for the doctor whose
	// hour intersects [start, end), excluding excludeID when non-nil.
	// Half-open semantics: back-to-back appointments do not overlap.
	FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]*Appointment, error)
}
