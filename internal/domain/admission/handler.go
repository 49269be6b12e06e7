package admission

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/schema"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/pkg/pagination"
)

type Handler struct {
	svc     *Service
	schemas *schema.Validator
}

// NewHandler builds the admission handler. schemas may be nil, in which case
// request bodies are only checked by the service.
func NewHandler(svc *Service, schemas *schema.Validator) *Handler {
	return &Handler{svc: svc, schemas: schemas}
}

func (h *Handler) body(def string) []echo.MiddlewareFunc {
	if h.schemas == nil {
		return nil
	}
	return []echo.MiddlewareFunc{h.schemas.Body(def)}
}

func (h *Handler) RegisterRoutes(api *echo.Group, _ *echo.Group) {
	// Read endpoints: all clinical staff
	readGroup := api.Group("", auth.RequireRole(auth.ClinicalReaders...))
	readGroup.GET("/admissions", h.ListAdmissions)
	readGroup.GET("/admissions/:id", h.GetAdmission)
	readGroup.GET("/admissions/:id/discharge", h.GetDischarge)
	readGroup.POST("/who-discharge/calculate", h.CalculateWHO, h.body("WHODischarge")...)

	// Write endpoints: doctors
	writeGroup := api.Group("", auth.RequireRole(auth.ClinicalWriters...))
	writeGroup.POST("/admissions", h.CreateAdmission, h.body("Admission")...)
	writeGroup.PUT("/admissions/:id", h.UpdateAdmission, h.body("Admission")...)

	// Discharge: consultant or registrar
	dischargeGroup := api.Group("", auth.RequireRole(auth.Dischargers...))
	dischargeGroup.POST("/admissions/:id/discharge", h.Discharge, h.body("DischargeRequest")...)
}

// statusFor maps service errors onto HTTP statuses. Anything it does not
// recognise is a storage or internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotAdmitted):
		return http.StatusConflict
	case errors.Is(err, ErrNotReady), errors.Is(err, scoring.ErrOutOfDomain), errors.Is(err, scoring.ErrInvalid),
		db.IsDataException(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateAdmission(c echo.Context) error {
	var a Admission
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAdmission(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAdmission(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAdmissions(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"status", "ward", "sex", "hospital_number", "patient_name", "surgeon", "age", "admitted_at", "_sort"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.SearchAdmissions(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAdmission(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var a Admission
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.UpdateAdmission(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CalculateWHO(c echo.Context) error {
	var a WHODischargeAssessment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	score, err := h.svc.ScoreDischarge(a)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	display, _ := WHORecommendationDisplay(score.Recommendation)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"score":   score,
		"display": display,
	})
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req DischargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	d, err := h.svc.Discharge(ctx, id, req, auth.Actor(ctx))
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDischarge(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDischarge(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, d)
}
