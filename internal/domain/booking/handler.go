package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleStaff, auth.RolePatient))
	g.POST("/appointments", h.Book)
	g.PUT("/appointments/:id", h.Reschedule)
	g.POST("/appointments/:id/cancel", h.Cancel)
	g.GET("/appointments", h.List)
	g.GET("/appointments/:id", h.Get)
	g.GET("/doctors/:id/availability", h.AvailableSlots)

	staff := api.Group("", auth.RequireRole(auth.RoleStaff))
	staff.POST("/appointments/:id/complete", h.Complete)
}

// mapError translates booking errors into HTTP responses. Unknown errors are
// internal.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, directory.ErrDoctorNotFound),
		errors.Is(err, directory.ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrSlotNotOffered),
		errors.Is(err, ErrSlotInPast):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// requester returns the acting patient's id for ownership checks. Staff act
// without one.
func requester(c echo.Context) (uuid.UUID, error) {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) != auth.RolePatient {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "token subject is not a patient id")
	}
	return id, nil
}

type bookRequest struct {
	DoctorID       uuid.UUID `json:"doctor_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	Notes          *string   `json:"notes,omitempty"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
	}
	if req.ScheduledStart.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduled_start is required")
	}

	// Patients always book for themselves.
	pid, err := requester(c)
	if err != nil {
		return err
	}
	if pid != uuid.Nil {
		req.PatientID = pid
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}

	a, err := h.svc.Book(c.Request().Context(), req.DoctorID, req.PatientID, req.ScheduledStart, req.Notes)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

type rescheduleRequest struct {
	ScheduledStart time.Time  `json:"scheduled_start"`
	DoctorID       *uuid.UUID `json:"doctor_id,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ScheduledStart.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduled_start is required")
	}

	rq, err := requester(c)
	if err != nil {
		return err
	}

	a, err := h.svc.Reschedule(c.Request().Context(), id, rq, RescheduleParams{
		Start:    req.ScheduledStart,
		DoctorID: req.DoctorID,
		Notes:    req.Notes,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type cancelRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rq, err := requester(c)
	if err != nil {
		return err
	}
	if rq == uuid.Nil {
		// Staff cancel on a patient's behalf.
		var req cancelRequest
		if err := c.Bind(&req); err == nil {
			rq = req.PatientID
		}
	}

	if err := h.svc.Cancel(c.Request().Context(), id, rq); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Complete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rq, err := requester(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id, rq)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	rq, err := requester(c)
	if err != nil {
		return err
	}
	patientID := rq
	if patientID == uuid.Nil {
		patientID, err = uuid.Parse(c.QueryParam("patient_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
		}
	}

	status := c.QueryParam("status")
	if status != "" && !ValidStatuses[status] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, status, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id": doctorID,
		"date":      date.Format("2006-01-02"),
		"slots":     slots,
	})
}
