package diabeticfoot

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

func NewHandler(svc *Service, schemas *schema.Validator) *Handler {
	return &Handler{svc: svc, schemas: schemas}
}

func (h *Handler) body(def string) []echo.MiddlewareFunc {
	if h.schemas == nil {
		return nil
	}
	return []echo.MiddlewareFunc{h.schemas.Body(def)}
}

// statusFor maps service errors onto HTTP statuses. Anything it does not
// recognise is a storage or internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAdmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, scoring.ErrOutOfDomain), errors.Is(err, scoring.ErrInvalid), db.IsDataException(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) RegisterRoutes(api *echo.Group, _ *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.ClinicalReaders...))
	readGroup.POST("/diabetic-foot/calculate", h.Calculate, h.body("DiabeticFootInput")...)
	readGroup.GET("/diabetic-foot/assessments", h.Search)
	readGroup.GET("/diabetic-foot/assessments/:id", h.Get)
	readGroup.GET("/admissions/:id/diabetic-foot-assessments", h.ListByAdmission)

	writeGroup := api.Group("", auth.RequireRole(auth.ClinicalWriters...))
	writeGroup.POST("/admissions/:id/diabetic-foot-assessments", h.Record, h.body("DiabeticFootInput")...)
}

func (h *Handler) Calculate(c echo.Context) error {
	var in AssessmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	eval, err := h.svc.Calculate(in)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, eval)
}

func (h *Handler) Record(c echo.Context) error {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid admission id")
	}
	var in AssessmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.Record(ctx, admissionID, in, auth.Actor(ctx))
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListByAdmission(c echo.Context) error {
	admissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid admission id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByAdmission(c.Request().Context(), admissionID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"admission_id", "risk_category", "recommended_intervention", "total_score", "assessed_at", "_sort"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
