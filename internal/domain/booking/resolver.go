package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
)

// TemplateSource is the slice of the availability catalog the resolver needs.
type TemplateSource interface {
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*availability.SlotTemplate, error)
}

// ConflictResolver decides whether an hour is bookable with a doctor. Checks
// run in a fixed order so callers always get the most specific diagnosis:
// doctor existence, template membership, clock, then ledger collision.
type ConflictResolver struct {
	doctors   DoctorFinder
	templates TemplateSource
	ledger    Repository
	now       func() time.Time
}

func NewConflictResolver(doctors DoctorFinder, templates TemplateSource, ledger Repository) *ConflictResolver {
	return &ConflictResolver{doctors: doctors, templates: templates, ledger: ledger, now: time.Now}
}

// Check validates that the hour starting at start is bookable with the
// doctor. excludeID ignores one existing appointment, so a reschedule does
// not collide with itself; pass uuid.Nil for a fresh booking.
func (r *ConflictResolver) Check(ctx context.Context, doctorID uuid.UUID, start time.Time, excludeID uuid.UUID) error {
	if _, err := r.doctors.GetDoctor(ctx, doctorID); err != nil {
		return err
	}

	slot := availability.SlotForStart(start)

	templates, err := r.templates.ListByDoctor(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("loading slot templates: %w", err)
	}
	offered := false
	for _, t := range templates {
		if t.Slot == slot {
			offered = true
			break
		}
	}
	if !offered {
		return ErrSlotNotOffered
	}

	if !start.After(r.now()) {
		return ErrSlotInPast
	}

	overlapping, err := r.ledger.FindOverlapping(ctx, doctorID, start, start.Add(time.Hour), excludeID)
	if err != nil {
		return fmt.Errorf("checking ledger overlap: %w", err)
	}
	if len(overlapping) > 0 {
		return ErrSlotTaken
	}
	return nil
}
