package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

func asRole(c echo.Context, role, userID string) {
	ctx := context.WithValue(c.Request().Context(), auth.UserRoleKey, role)
	ctx = context.WithValue(ctx, auth.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestHandler_Book(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	doc := f.addDoctor("09:00-10:00")
	pat := f.addPatient()

	body := `{"doctor_id":"` + doc.String() + `","patient_id":"` + pat.String() +
		`","scheduled_start":"2026-03-10T09:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asRole(c, auth.RoleStaff, "staff-1")

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %s", a.Status)
	}
}

func TestHandler_Book_PatientBooksSelf(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	doc := f.addDoctor("09:00-10:00")
	pat := f.addPatient()
	other := f.addPatient()

	// The patient_id in the body is ignored for patient tokens.
	body := `{"doctor_id":"` + doc.String() + `","patient_id":"` + other.String() +
		`","scheduled_start":"2026-03-10T09:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asRole(c, auth.RolePatient, pat.String())

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.PatientID != pat {
		t.Errorf("expected booking for token subject, got %s", a.PatientID)
	}
}

func TestHandler_Book_Conflict(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	doc := f.addDoctor("09:00-10:00")
	p1 := f.addPatient()
	p2 := f.addPatient()

	if _, err := f.svc.Book(context.Background(), doc, p1, at(9, 0), nil); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	body := `{"doctor_id":"` + doc.String() + `","patient_id":"` + p2.String() +
		`","scheduled_start":"2026-03-10T09:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asRole(c, auth.RoleStaff, "staff-1")

	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestHandler_Book_UnprocessableSlot(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	doc := f.addDoctor("09:00-10:00")
	pat := f.addPatient()

	body := `{"doctor_id":"` + doc.String() + `","patient_id":"` + pat.String() +
		`","scheduled_start":"2026-03-10T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asRole(c, auth.RoleStaff, "staff-1")

	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", httpErr.Code)
	}
}

func TestHandler_Cancel_WrongPatient(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	doc := f.addDoctor("09:00-10:00")
	owner := f.addPatient()
	other := f.addPatient()

	a, err := f.svc.Book(context.Background(), doc, owner, at(9, 0), nil)
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	asRole(c, auth.RolePatient, other.String())

	err = h.Cancel(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	asRole(c, auth.RoleStaff, "staff-1")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandler_AvailableSlots_BadDate(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	doc := f.addDoctor("09:00-10:00")

	req := httptest.NewRequest(http.MethodGet, "/?date=tomorrow", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(doc.String())
	asRole(c, auth.RoleStaff, "staff-1")

	err := h.AvailableSlots(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}
