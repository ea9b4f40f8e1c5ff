package availability

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
)

// DoctorFinder is the slice of the directory service availability needs.
type DoctorFinder interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
}

type Service struct {
	templates SlotTemplateRepository
	doctors   DoctorFinder
}

func NewService(templates SlotTemplateRepository, doctors DoctorFinder) *Service {
	return &Service{templates: templates, doctors: doctors}
}

// AddSlot registers a recurring slot for a doctor. The slot string is
// validated before anything touches the database.
func (s *Service) AddSlot(ctx context.Context, doctorID uuid.UUID, slot string) (*SlotTemplate, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	t := &SlotTemplate{DoctorID: doctorID, Slot: slot}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RemoveSlot deletes a doctor's template. A template belonging to a
// different doctor is indistinguishable from one that does not exist.
func (s *Service) RemoveSlot(ctx context.Context, slotID, doctorID uuid.UUID) error {
	t, err := s.templates.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if t.DoctorID != doctorID {
		return ErrSlotNotOwned
	}
	return s.templates.Delete(ctx, slotID)
}

func (s *Service) ListSlots(ctx context.Context, doctorID uuid.UUID) ([]*SlotTemplate, error) {
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	slots, err := s.templates.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	// A doctor with no templates serializes as an empty list, not null.
	if slots == nil {
		slots = []*SlotTemplate{}
	}
	return slots, nil
}

// FilterDoctors finds doctors by exact slot string plus case-insensitive
// name/specialty substrings. All filters are optional.
func (s *Service) FilterDoctors(ctx context.Context, slot, name, specialty string, limit, offset int) ([]*directory.Doctor, int, error) {
	if slot != "" {
		if err := ValidateSlot(slot); err != nil {
			return nil, 0, err
		}
	}
	return s.templates.FilterDoctors(ctx, slot, name, specialty, limit, offset)
}
