// Package reporting serves ward measures and plain-text clinical documents
// built from stored admissions and assessments.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/admission"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/burns"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/diabeticfoot"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
)

// MeasureDefinition defines a ward measure with its SQL query.
type MeasureDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
}

// PredefinedMeasures is the list of available ward measures.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "ward-census",
		Name:        "Ward Census",
		Description: "Current inpatients by ward",
		SQL:         `SELECT ward, COUNT(*) AS inpatients FROM admission WHERE status = 'admitted' GROUP BY ward ORDER BY ward`,
	},
	{
		ID:          "discharge-readiness",
		Name:        "Discharge Readiness",
		Description: "Discharges by WHO recommendation, with the number against medical advice",
		SQL: `SELECT recommendation, COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN against_advice THEN 1 ELSE 0 END), 0) AS against_advice
			FROM discharge GROUP BY recommendation ORDER BY total DESC`,
	},
	{
		ID:          "foot-risk-distribution",
		Name:        "Diabetic Foot Risk Distribution",
		Description: "Diabetic foot assessments by risk category",
		SQL:         `SELECT risk_category, COUNT(*) AS total, ROUND(AVG(total_score), 1) AS mean_score FROM diabetic_foot_assessment GROUP BY risk_category ORDER BY total DESC`,
	},
	{
		ID:          "burn-severity",
		Name:        "Burn Severity",
		Description: "Burn assessments by ABSI score",
		SQL:         `SELECT absi, COUNT(*) AS total, ROUND(AVG(tbsa)::numeric, 1) AS mean_tbsa FROM burn_assessment GROUP BY absi ORDER BY absi`,
	},
}

// AdmissionSource is what the summaries need from admissions.
type AdmissionSource interface {
	GetAdmission(ctx context.Context, id uuid.UUID) (*admission.Admission, error)
	GetDischarge(ctx context.Context, admissionID uuid.UUID) (*admission.Discharge, error)
}

type FootSource interface {
	Get(ctx context.Context, id uuid.UUID) (*diabeticfoot.StoredAssessment, error)
}

type BurnSource interface {
	Get(ctx context.Context, id uuid.UUID) (*burns.StoredAssessment, error)
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	queries    db.Querier
	admissions AdmissionSource
	foot       FootSource
	burns      BurnSource
	reporter   *Reporter
}

// NewHandler creates a new reporting handler. queries may be nil, in which
// case measures are listed but not evaluated.
func NewHandler(queries db.Querier, admissions AdmissionSource, foot FootSource, burnSrc BurnSource, reporter *Reporter) *Handler {
	return &Handler{queries: queries, admissions: admissions, foot: foot, burns: burnSrc, reporter: reporter}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group, _ *echo.Group) {
	reportGroup := api.Group("/reports", auth.RequireRole(auth.RoleConsultant, auth.RoleRegistrar))
	reportGroup.GET("/measures", h.ListMeasures)
	reportGroup.GET("/measures/:id/evaluate", h.EvaluateMeasure)

	readGroup := api.Group("", auth.RequireRole(auth.ClinicalReaders...))
	readGroup.GET("/admissions/:id/discharge/summary", h.DischargeSummary)
	readGroup.GET("/diabetic-foot/assessments/:id/summary", h.DiabeticFootSummary)
	readGroup.GET("/burn-assessments/:id/summary", h.BurnSummary)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}
	if h.queries == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "measures need a database")
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}
	return c.JSON(http.StatusOK, MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
	})
}

// executeSQL runs a SQL query and returns results as a slice of maps.
func (h *Handler) executeSQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	rows, err := h.queries.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	results := []map[string]interface{}{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func lookupError(err error) error {
	if errors.Is(err, admission.ErrNotFound) || errors.Is(err, diabeticfoot.ErrNotFound) || errors.Is(err, burns.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) DischargeSummary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.admissions.GetAdmission(ctx, id)
	if err != nil {
		return lookupError(err)
	}
	d, err := h.admissions.GetDischarge(ctx, id)
	if err != nil {
		return lookupError(err)
	}
	return c.String(http.StatusOK, h.reporter.DischargeSummary(a, d))
}

// admissionFor loads the owning admission; a missing one leaves the patient
// block out rather than failing the report.
func (h *Handler) admissionFor(ctx context.Context, id uuid.UUID) *admission.Admission {
	a, err := h.admissions.GetAdmission(ctx, id)
	if err != nil {
		return nil
	}
	return a
}

func (h *Handler) DiabeticFootSummary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	s, err := h.foot.Get(ctx, id)
	if err != nil {
		return lookupError(err)
	}
	return c.String(http.StatusOK, h.reporter.DiabeticFootReport(h.admissionFor(ctx, s.AdmissionID), s))
}

func (h *Handler) BurnSummary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	s, err := h.burns.Get(ctx, id)
	if err != nil {
		return lookupError(err)
	}
	return c.String(http.StatusOK, h.reporter.BurnReport(h.admissionFor(ctx, s.AdmissionID), s))
}
