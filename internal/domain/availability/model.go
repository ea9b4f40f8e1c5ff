package availability

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMalformedSlot = errors.New("slot must be HH:MM-HH:MM with start before end")
	ErrDuplicateSlot = errors.New("slot already exists for this doctor")
	ErrSlotNotOwned  = errors.New("slot does not exist or belongs to another doctor")
)

// SlotTemplate is a recurring daily window during which a doctor accepts
// appointments. The slot string is the template's identity for matching:
// appointments book against templates by exact string equality.
type SlotTemplate struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Slot      string    `json:"slot"`
	CreatedAt time.Time `json:"created_at"`
}

var slotPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)

// ValidateSlot checks the HH:MM-HH:MM form (24-hour, zero-padded) and that
// the start precedes the end. Zero-padding makes lexical comparison correct.
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return ErrMalformedSlot
	}
	if slot[:5] >= slot[6:] {
		return ErrMalformedSlot
	}
	return nil
}

// SlotForStart renders the one-hour window beginning at start as a slot
// string. A start late enough to wrap past midnight produces a string whose
// end sorts before its start, which can never equal a valid template.
func SlotForStart(start time.Time) string {
	end := start.Add(time.Hour)
	return fmt.Sprintf("%02d:%02d-%02d:%02d", start.Hour(), start.Minute(), end.Hour(), end.Minute())
}

// SlotStartOnDate anchors a slot's start time on the given calendar date, UTC.
func SlotStartOnDate(slot string, date time.Time) time.Time {
	hh := int(slot[0]-'0')*10 + int(slot[1]-'0')
	mm := int(slot[3]-'0')*10 + int(slot[4]-'0')
	return time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, time.UTC)
}
