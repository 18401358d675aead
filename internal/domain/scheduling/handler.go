package scheduling

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments/search-availability", h.SearchAvailability,
		auth.RequireRole("patient", "registrar", "doctor"))

	sched := api.Group("/doctor/schedule", auth.RequireRole("doctor"))
	sched.POST("/times", h.SetTimes)
	sched.GET("/times", h.GetTimes)
	sched.GET("/availability", h.GetAvailability)
	sched.POST("/availability/toggle", h.ToggleAvailability)
}

type searchAvailabilityRequest struct {
	Doctor string `json:"doctor"`
	Date   string `json:"date"`
}

func (h *Handler) SearchAvailability(c echo.Context) error {
	var req searchAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doctorID, err := uuid.Parse(req.Doctor)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	open, err := h.svc.SearchAvailability(c.Request().Context(), doctorID, date)
	switch {
	case errors.Is(err, ErrDateNotFuture):
		return echo.NewHTTPError(http.StatusBadRequest, ErrDateNotFuture.Error())
	case errors.Is(err, ErrNoTemplates):
		return echo.NewHTTPError(http.StatusNotFound, ErrNoTemplates.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Templates exist for the weekday but every slot is consumed: this is a
	// success with an explanatory message, distinct from the 404 above.
	if len(open) == 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "success",
			"message": "no available doctor times",
			"data":    open,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   open,
	})
}

// doctorFromContext resolves the authenticated caller to a doctor id. The
// token subject is the profile id.
func doctorFromContext(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, ErrDoctorNotFound.Error())
	}
	return id, nil
}

type setTimesRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *Handler) SetTimes(c echo.Context) error {
	doctorID, err := doctorFromContext(c)
	if err != nil {
		return err
	}

	var req setTimesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	wh, created, err := h.svc.SetTimes(c.Request().Context(), doctorID, req.StartTime, req.EndTime)
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrDoctorNotFound.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, wh)
}

func (h *Handler) GetTimes(c echo.Context) error {
	doctorID, err := doctorFromContext(c)
	if err != nil {
		return err
	}

	wh, err := h.svc.GetTimes(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "working hours not set")
	}
	return c.JSON(http.StatusOK, wh)
}

func (h *Handler) GetAvailability(c echo.Context) error {
	doctorID, err := doctorFromContext(c)
	if err != nil {
		return err
	}

	templates, err := h.svc.GetAvailability(c.Request().Context(), doctorID)
	switch {
	case errors.Is(err, ErrWorkingHoursNotSet):
		return echo.NewHTTPError(http.StatusNotFound, ErrWorkingHoursNotSet.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   templates,
	})
}

type toggleAvailabilityRequest struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
}

func (h *Handler) ToggleAvailability(c echo.Context) error {
	doctorID, err := doctorFromContext(c)
	if err != nil {
		return err
	}

	var req toggleAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, enabled, err := h.svc.ToggleAvailability(c.Request().Context(), doctorID, req.Day, req.StartTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"enabled": enabled,
		"slot":    t,
	})
}
