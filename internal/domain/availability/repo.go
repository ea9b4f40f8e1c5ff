package availability

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
)

type SlotTemplateRepository interface {
	Create(ctx context.Context, t *SlotTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*SlotTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByDoctor returns the doctor's templates in ascending slot order.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*SlotTemplate, error)
	// FilterDoctors returns active doctors offering the exact slot string,
	// further narrowed by case-insensitive name/specialty substrings. Empty
	// filters match everything.
	FilterDoctors(ctx context.Context, slot, name, specialty string, limit, offset int) ([]*directory.Doctor, int, error)
}
