package availability

import (
	"errors"
	"net/http"

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
	read := api.Group("", auth.RequireRole(auth.RoleStaff, auth.RolePatient))
	read.GET("/doctors", h.FilterDoctors)
	read.GET("/doctors/:id/slots", h.ListSlots)

	staff := api.Group("", auth.RequireRole(auth.RoleStaff))
	staff.POST("/doctors/:id/slots", h.AddSlot)
	staff.DELETE("/doctors/:id/slots/:slotId", h.RemoveSlot)
}

type addSlotRequest struct {
	Slot string `json:"slot"`
}

func (h *Handler) AddSlot(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var req addSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.AddSlot(c.Request().Context(), doctorID, req.Slot)
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedSlot):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrDuplicateSlot):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, directory.ErrDoctorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) RemoveSlot(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	slotID, err := uuid.Parse(c.Param("slotId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}
	if err := h.svc.RemoveSlot(c.Request().Context(), slotID, doctorID); err != nil {
		if errors.Is(err, ErrSlotNotOwned) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	items, err := h.svc.ListSlots(c.Request().Context(), doctorID)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) FilterDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.FilterDoctors(c.Request().Context(),
		c.QueryParam("slot"), c.QueryParam("name"), c.QueryParam("specialty"),
		pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, ErrMalformedSlot) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
