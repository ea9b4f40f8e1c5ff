package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
)

// DoctorFinder and PatientFinder are the slices of the directory service the
// booking flow needs.
type DoctorFinder interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
}

type PatientFinder interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error)
}

// TxFunc runs fn as one atomic storage unit. The server wires db.RunInTx
// here; a nil TxFunc runs fn directly.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	ledger    Repository
	resolver  *ConflictResolver
	templates TemplateSource
	doctors   DoctorFinder
	patients  PatientFinder
	logger    zerolog.Logger
	runTx     TxFunc
	now       func() time.Time

	// Serializes check-then-insert per doctor. The partial unique index on
	// (doctor_id, scheduled_start) backstops instances that do not share
	// this process.
	mu          sync.Mutex
	doctorLocks map[uuid.UUID]*sync.Mutex
}

func NewService(ledger Repository, resolver *ConflictResolver, templates TemplateSource,
	doctors DoctorFinder, patients PatientFinder, runTx TxFunc, logger zerolog.Logger) *Service {
	if runTx == nil {
		runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{
		ledger:      ledger,
		resolver:    resolver,
		templates:   templates,
		doctors:     doctors,
		patients:    patients,
		logger:      logger,
		runTx:       runTx,
		now:         time.Now,
		doctorLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) lockDoctor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.doctorLocks[id]
	if !ok {
		m = &sync.Mutex{}
		s.doctorLocks[id] = m
	}
	return m
}

// Book places a new appointment on the ledger after the resolver clears the
// hour.
func (s *Service) Book(ctx context.Context, doctorID, patientID uuid.UUID, start time.Time, notes *string) (*Appointment, error) {
	start = start.UTC().Truncate(time.Minute)

	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	lock := s.lockDoctor(doctorID)
	lock.Lock()
	defer lock.Unlock()

	a := &Appointment{
		DoctorID:       doctorID,
		PatientID:      patientID,
		ScheduledStart: start,
		Status:         StatusScheduled,
		Notes:          notes,
	}
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.resolver.Check(ctx, doctorID, start, uuid.Nil); err != nil {
			return err
		}
		return s.ledger.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("doctor_id", doctorID.String()).
		Str("patient_id", patientID.String()).
		Time("scheduled_start", start).
		Msg("appointment booked")
	return a, nil
}

// RescheduleParams carries the changes a reschedule may apply. A nil DoctorID
// keeps the current doctor; a nil Notes keeps the current notes.
type RescheduleParams struct {
	Start    time.Time
	DoctorID *uuid.UUID
	Notes    *string
}

// Reschedule moves a scheduled appointment to a new hour, optionally with a
// new doctor. requester uuid.Nil means a staff action with no ownership
// check.
func (s *Service) Reschedule(ctx context.Context, id, requester uuid.UUID, p RescheduleParams) (*Appointment, error) {
	a, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester != uuid.Nil && a.PatientID != requester {
		return nil, ErrNotOwner
	}
	if a.Status != StatusScheduled {
		return nil, ErrInvalidTransition
	}

	doctorID := a.DoctorID
	if p.DoctorID != nil {
		if _, err := s.doctors.GetDoctor(ctx, *p.DoctorID); err != nil {
			return nil, err
		}
		doctorID = *p.DoctorID
	}
	start := p.Start.UTC().Truncate(time.Minute)

	lock := s.lockDoctor(doctorID)
	lock.Lock()
	defer lock.Unlock()

	a.DoctorID = doctorID
	a.ScheduledStart = start
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.resolver.Check(ctx, doctorID, start, a.ID); err != nil {
			return err
		}
		return s.ledger.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("doctor_id", doctorID.String()).
		Time("scheduled_start", start).
		Msg("appointment rescheduled")
	return a, nil
}

// Cancel marks the appointment cancelled, freeing its hour. The row stays on
// the ledger.
func (s *Service) Cancel(ctx context.Context, id, requester uuid.UUID) error {
	a, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if requester != uuid.Nil && a.PatientID != requester {
		return ErrNotOwner
	}
	switch a.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrInvalidTransition
	}

	a.Status = StatusCancelled
	if err := s.ledger.Update(ctx, a); err != nil {
		return err
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Msg("appointment cancelled")
	return nil
}

// Complete marks a scheduled appointment as having taken place.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) error {
	a, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != StatusScheduled {
		return ErrInvalidTransition
	}

	a.Status = StatusCompleted
	if err := s.ledger.Update(ctx, a); err != nil {
		return err
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Msg("appointment completed")
	return nil
}

// Get fetches a single appointment. requester uuid.Nil skips the ownership
// check.
func (s *Service) Get(ctx context.Context, id, requester uuid.UUID) (*Appointment, error) {
	a, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester != uuid.Nil && a.PatientID != requester {
		return nil, ErrNotOwner
	}
	return a, nil
}

// ListByPatient returns a patient's appointments ascending by start,
// optionally filtered to one status.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	return s.ledger.ListByPatient(ctx, patientID, status, limit, offset)
}

// AvailableSlots returns the doctor's template slots still free on the given
// calendar date: templates minus hours held by non-cancelled appointments,
// minus hours already past.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	if _, err := s.doctors.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	templates, err := s.templates.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	appts, err := s.ledger.ListByDoctorAndRange(ctx, doctorID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(appts))
	for _, a := range appts {
		if a.Active() {
			taken[availability.SlotForStart(a.ScheduledStart)] = true
		}
	}

	now := s.now()
	free := []string{}
	for _, t := range templates {
		if taken[t.Slot] {
			continue
		}
		if !availability.SlotStartOnDate(t.Slot, dayStart).After(now) {
			continue
		}
		free = append(free, t.Slot)
	}
	return free, nil
}
