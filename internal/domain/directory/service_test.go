package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrDoctorNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) Search(_ context.Context, name, specialty string, limit, offset int) ([]*Doctor, int, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		items = append(items, d)
	}
	return items, len(items), nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrPatientNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		items = append(items, p)
	}
	return items, len(items), nil
}

func newTestService() (*Service, *mockDoctorRepo, *mockPatientRepo) {
	doctors := newMockDoctorRepo()
	patients := newMockPatientRepo()
	return NewService(doctors, patients), doctors, patients
}

func TestCreateDoctor_RequiresName(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreateDoctor(context.Background(), &Doctor{Specialty: "cardiology"})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestCreateDoctor_RequiresSpecialty(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreateDoctor(context.Background(), &Doctor{Name: "Dr. Adams"})
	if err == nil {
		t.Fatal("expected error for missing specialty")
	}
}

func TestCreateDoctor_SetsActiveAndID(t *testing.T) {
	svc, repo, _ := newTestService()
	d := &Doctor{Name: "Dr. Adams", Specialty: "cardiology"}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if !d.Active {
		t.Error("expected new doctor to be active")
	}
	if _, ok := repo.doctors[d.ID]; !ok {
		t.Error("expected doctor to be persisted")
	}
}

func TestGetDoctor_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetDoctor(context.Background(), uuid.New())
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestDeleteDoctor_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.DeleteDoctor(context.Background(), uuid.New())
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCreatePatient_RequiresName(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreatePatient(context.Background(), &Patient{Email: "a@example.com"})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestPatient_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	p := &Patient{Name: "Ines Oliveira", Email: "ines@example.com"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetPatient(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ines Oliveira" {
		t.Errorf("expected name to round-trip, got %q", got.Name)
	}

	if err := svc.DeletePatient(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetPatient(context.Background(), p.ID); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound after delete, got %v", err)
	}
}
