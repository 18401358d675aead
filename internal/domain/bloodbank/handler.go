package bloodbank

import (
	"errors"
	"net/http"

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
	write := api.Group("/blood", auth.RequireRole("admin", "laboratorist", "nurse"))
	write.PUT("/:group", h.SetUnits)
	write.POST("/:group/donate", h.Donate)
	write.POST("/:group/consume", h.Consume)

	read := api.Group("/blood", auth.RequireRole("admin", "laboratorist", "nurse", "doctor"))
	read.GET("", h.List)
	read.GET("/:group", h.Get)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*BloodStock{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context(), c.Param("group"))
	switch {
	case errors.Is(err, ErrInvalidGroup):
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidGroup.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

type unitsRequest struct {
	Units int `json:"units"`
}

func (h *Handler) SetUnits(c echo.Context) error {
	var req unitsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := h.svc.SetUnits(c.Request().Context(), c.Param("group"), req.Units)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Donate(c echo.Context) error {
	var req unitsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := h.svc.Donate(c.Request().Context(), c.Param("group"), req.Units)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Consume(c echo.Context) error {
	var req unitsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := h.svc.Consume(c.Request().Context(), c.Param("group"), req.Units)
	switch {
	case errors.Is(err, ErrInsufficientUnits):
		return echo.NewHTTPError(http.StatusConflict, ErrInsufficientUnits.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}
