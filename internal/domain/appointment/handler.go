package appointment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/domain/scheduling"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/payments"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments/register", h.Register,
		auth.RequireRole("patient", "registrar"))
	api.GET("/appointments/:id", h.Get,
		auth.RequireRole("admin", "registrar", "doctor", "patient"))

	staff := api.Group("/appointments", auth.RequireRole("admin", "doctor"))
	staff.POST("/:id/complete", h.Complete)
	staff.POST("/:id/cancel", h.Cancel)

	admin := api.Group("/appointments", auth.RequireRole("admin"))
	admin.DELETE("/:id", h.Delete)
	admin.GET("/stats", h.Stats)

	doctor := api.Group("/doctor", auth.RequireRole("doctor"))
	doctor.GET("/appointments", h.ListForDoctor)
	doctor.GET("/appointments/count", h.CountForDoctor)
	doctor.GET("/notifications", h.Notifications)
	doctor.POST("/notifications/:id/read", h.MarkNotificationRead)

	patient := api.Group("/patient", auth.RequireRole("patient"))
	patient.GET("/appointments", h.ListForPatient)
}

// RegisterPublicRoutes mounts the payment gateway redirect target. The
// gateway calls back without a bearer token, so this lives outside the
// authenticated group.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/appointments/payment-success", h.PaymentSuccess)
}

type registerRequest struct {
	Doctor      string `json:"doctor"`
	Patient     string `json:"patient"`
	Weekday     string `json:"weekday"`
	StartTime   string `json:"start_time"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
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

	// Patients book for themselves; registrars pass the patient explicitly.
	patientID, err := uuid.Parse(req.Patient)
	if err != nil {
		patientID, err = uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
		}
	}

	result, err := h.svc.Register(c.Request().Context(), RegisterInput{
		DoctorID:    doctorID,
		PatientID:   patientID,
		Weekday:     req.Weekday,
		StartTime:   req.StartTime,
		Date:        date,
		Description: req.Description,
	})
	switch {
	case errors.Is(err, scheduling.ErrDateNotFuture):
		return echo.NewHTTPError(http.StatusBadRequest, scheduling.ErrDateNotFuture.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusConflict, ErrSlotTaken.Error())
	case errors.Is(err, payments.ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, payments.ErrGatewayUnavailable.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

// PaymentSuccess is where the gateway redirects the payer. Razorpay appends
// its own link id parameter; a session_id parameter is accepted for direct
// confirmations.
func (h *Handler) PaymentSuccess(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		sessionID = c.QueryParam("razorpay_payment_link_id")
	}
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing session id")
	}

	appt, err := h.svc.ConfirmPayment(c.Request().Context(), sessionID)
	switch {
	case errors.Is(err, payments.ErrCheckoutNotFound), errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "unknown payment session")
	case errors.Is(err, ErrPaymentIncomplete):
		return echo.NewHTTPError(http.StatusPaymentRequired, ErrPaymentIncomplete.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "success",
		"message":     "payment confirmed",
		"appointment": appt,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.changeStatus(c, h.svc.Complete)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.changeStatus(c, h.svc.Cancel)
}

func (h *Handler) changeStatus(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := fn(c.Request().Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Stats(c echo.Context) error {
	total, err := h.svc.CountAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"total": total})
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown subject")
	}
	return id, nil
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CountForDoctor(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.CountByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"total": n})
}

func (h *Handler) Notifications(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Notifications(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Notification{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkNotificationRead(c.Request().Context(), id, doctorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
