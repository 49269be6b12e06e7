package admission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/schema"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	v, err := schema.New()
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return NewHandler(newTestService(), v), echo.New()
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

const admissionBody = `{"hospital_number":"UNTH/PS/0042","patient_name":"Ngozi Obi","age":38,"sex":"female",
	"ward":"Burns Unit","diagnosis":"Flame burn 30% TBSA"}`

const dischargeBody = `{"assessment":{
	"vital_signs_stability": 3, "pain_control": 3, "mobility": 3, "wound_healing": 3,
	"oral_intake": 3, "elimination": 3, "mental_status": 3, "self_care": 3,
	"medication_understanding": 3, "follow_up_arranged": 3, "home_support": 3},
	"destination": "home"}`

func TestHandler_CreateAdmission(t *testing.T) {
	h, e := newTestHandler(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/admissions", admissionBody), rec)

	if err := h.CreateAdmission(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var a Admission
	json.Unmarshal(rec.Body.Bytes(), &a)
	if a.ID == uuid.Nil || a.Status != StatusAdmitted {
		t.Errorf("unexpected admission %+v", a)
	}
}

func TestHandler_CreateAdmission_BadRequest(t *testing.T) {
	h, e := newTestHandler(t)
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/admissions", `{}`), httptest.NewRecorder())
	if err := h.CreateAdmission(c); err == nil {
		t.Error("expected error for missing fields")
	}
}

func TestHandler_GetAdmission(t *testing.T) {
	h, e := newTestHandler(t)
	a := newAdmission()
	h.svc.CreateAdmission(context.Background(), a)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	if err := h.GetAdmission(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetAdmission_NotFoundAndInvalid(t *testing.T) {
	h, e := newTestHandler(t)
	for id, want := range map[string]int{uuid.New().String(): http.StatusNotFound, "not-a-uuid": http.StatusBadRequest} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(id)
		if code := httpCode(t, h.GetAdmission(c)); code != want {
			t.Errorf("id %s: expected %d, got %d", id, want, code)
		}
	}
}

func TestHandler_ListAdmissions(t *testing.T) {
	h, e := newTestHandler(t)
	ctx := context.Background()
	h.svc.CreateAdmission(ctx, newAdmission())
	h.svc.CreateAdmission(ctx, newAdmission())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/admissions?status=admitted", nil), rec)
	if err := h.ListAdmissions(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("expected 2 admissions, got %d", resp.Total)
	}
}

func TestHandler_UpdateAdmission_Discharged(t *testing.T) {
	h, e := newTestHandler(t)
	ctx := context.Background()
	a := newAdmission()
	a.AdmittedAt = time.Now().Add(-time.Hour)
	h.svc.CreateAdmission(ctx, a)
	h.svc.Discharge(ctx, a.ID, DischargeRequest{Assessment: uniform(3)}, "")

	c := e.NewContext(jsonRequest(http.MethodPut, "/", admissionBody), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	if code := httpCode(t, h.UpdateAdmission(c)); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}
}

func TestHandler_CalculateWHO(t *testing.T) {
	h, e := newTestHandler(t)
	rec := httptest.NewRecorder()
	body := `{"vital_signs_stability":1,"pain_control":1,"mobility":1,"wound_healing":1,"oral_intake":1,
		"elimination":1,"mental_status":1,"self_care":1,"medication_understanding":1,"follow_up_arranged":1,
		"home_support":1,"high_readmission_risk":true}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/", body), rec)
	if err := h.CalculateWHO(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Score WHODischargeScore `json:"score"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Score.TotalScore != 9 || resp.Score.Recommendation != NotReadyForDischarge {
		t.Errorf("expected 9/not_ready, got %+v", resp.Score)
	}

	bad := strings.Replace(body, `"mobility":1`, `"mobility":5`, 1)
	c = e.NewContext(jsonRequest(http.MethodPost, "/", bad), httptest.NewRecorder())
	if code := httpCode(t, h.CalculateWHO(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_Discharge(t *testing.T) {
	h, e := newTestHandler(t)
	a := newAdmission()
	a.AdmittedAt = time.Now().Add(-48 * time.Hour)
	h.svc.CreateAdmission(context.Background(), a)

	req := jsonRequest(http.MethodPost, "/", dischargeBody)
	req = req.WithContext(auth.WithIdentity(req.Context(), "u-1", "Dr Nwankwo", []string{auth.RoleConsultant}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())

	if err := h.Discharge(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var d Discharge
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.DischargedBy == nil || *d.DischargedBy != "Dr Nwankwo" {
		t.Errorf("expected discharged_by from the token, got %v", d.DischargedBy)
	}

	// Second discharge conflicts.
	c = e.NewContext(jsonRequest(http.MethodPost, "/", dischargeBody), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	if code := httpCode(t, h.Discharge(c)); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	if err := h.GetDischarge(c); err != nil {
		t.Errorf("unexpected error fetching discharge: %v", err)
	}
}

func TestHandler_Discharge_NotReady(t *testing.T) {
	h, e := newTestHandler(t)
	a := newAdmission()
	h.svc.CreateAdmission(context.Background(), a)

	body := strings.ReplaceAll(dischargeBody, ": 3", ": 0")
	c := e.NewContext(jsonRequest(http.MethodPost, "/", body), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	if code := httpCode(t, h.Discharge(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_GetDischarge_NotFound(t *testing.T) {
	h, e := newTestHandler(t)
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	if code := httpCode(t, h.GetDischarge(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_RegisterRoutes_SchemaValidation(t *testing.T) {
	h, e := newTestHandler(t)
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			c.SetRequest(r.WithContext(auth.WithIdentity(r.Context(), "u-1", "", []string{auth.RoleRegistrar})))
			return next(c)
		}
	})
	h.RegisterRoutes(api, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/admissions", `{"patient_name":"x","extra":true}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 from schema check, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/admissions", admissionBody))
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_StorageFailure(t *testing.T) {
	admissions := newMockAdmissionRepo()
	admissions.err = errors.New("connection refused")
	svc := NewService(admissions, newMockDischargeRepo(), db.NoTx{}, nil, zerolog.Nop())
	h, e := NewHandler(svc, nil), echo.New()
	id := uuid.New().String()

	tests := []struct {
		name    string
		req     *http.Request
		handler echo.HandlerFunc
	}{
		{"create", jsonRequest(http.MethodPost, "/", admissionBody), h.CreateAdmission},
		{"get", httptest.NewRequest(http.MethodGet, "/", nil), h.GetAdmission},
		{"list", httptest.NewRequest(http.MethodGet, "/", nil), h.ListAdmissions},
		{"update", jsonRequest(http.MethodPut, "/", admissionBody), h.UpdateAdmission},
		{"discharge", jsonRequest(http.MethodPost, "/", dischargeBody), h.Discharge},
	}
	for _, tt := range tests {
		c := e.NewContext(tt.req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(id)
		if code := httpCode(t, tt.handler(c)); code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", tt.name, code)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrNotAdmitted, http.StatusConflict},
		{ErrNotReady, http.StatusBadRequest},
		{&scoring.DomainError{Field: "age", Value: 200, Domain: "[0, 130]"}, http.StatusBadRequest},
		{scoring.Invalidf("ward is required"), http.StatusBadRequest},
		{fmt.Errorf("search admissions: %w", &pgconn.PgError{Code: "22007"}), http.StatusBadRequest},
		{fmt.Errorf("create admission: %w", errors.New("connection refused")), http.StatusInternalServerError},
		{&pgconn.PgError{Code: "57P01"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
