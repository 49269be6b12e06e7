package burns

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

// TitrationRequest is the body of a titration call.
type TitrationRequest struct {
	Resuscitation  ResuscitationInput `json:"resuscitation"`
	UrineMlPerHour float64            `json:"urine_ml_per_hour"`
}

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
	// Calculators and reads: all clinical staff
	readGroup := api.Group("", auth.RequireRole(auth.ClinicalReaders...))
	readGroup.GET("/burns/regions", h.ListRegions)
	readGroup.POST("/burns/tbsa", h.CalculateTBSA, h.body("TBSAInput")...)
	readGroup.POST("/burns/baux", h.CalculateBaux, h.body("Baux")...)
	readGroup.POST("/burns/absi", h.CalculateABSI, h.body("ABSI")...)
	readGroup.POST("/burns/resuscitation", h.PlanResuscitation, h.body("Resuscitation")...)
	readGroup.POST("/burns/titrate", h.Titrate, h.body("Titration")...)
	readGroup.POST("/burns/vitals", h.EvaluateVitals, h.body("Vitals")...)
	readGroup.POST("/burns/calculate", h.Calculate, h.body("BurnAssessment")...)
	readGroup.GET("/burn-assessments/:id", h.Get)
	readGroup.GET("/burn-assessments/:id/resuscitation", h.CurrentPlan)
	readGroup.GET("/admissions/:id/burn-assessments", h.ListByAdmission)

	writeGroup := api.Group("", auth.RequireRole(auth.ClinicalWriters...))
	writeGroup.POST("/admissions/:id/burn-assessments", h.Record, h.body("BurnAssessment")...)
}

func (h *Handler) ListRegions(c echo.Context) error {
	method := c.QueryParam("method")
	if method == "" {
		method = MethodLundBrowder
	}
	if method != MethodLundBrowder && method != MethodRuleOfNines {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown method: "+method)
	}
	keys := Regions(method)
	type region struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	out := make([]region, 0, len(keys))
	for _, k := range keys {
		out = append(out, region{Key: k, Name: GetRegionDisplayName(k)})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CalculateTBSA(c echo.Context) error {
	var in TBSAInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.TBSA(in)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) CalculateBaux(c echo.Context) error {
	var in BauxInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Baux(in)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) CalculateABSI(c echo.Context) error {
	var in ABSIInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.ABSI(in)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) PlanResuscitation(c echo.Context) error {
	var in ResuscitationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Resuscitation(in)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Titrate(c echo.Context) error {
	var req TitrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Titrate(req.Resuscitation, req.UrineMlPerHour)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) EvaluateVitals(c echo.Context) error {
	var v Vitals
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": h.svc.Vitals(v),
	})
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

func (h *Handler) CurrentPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	plan, err := h.svc.CurrentPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, plan)
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
