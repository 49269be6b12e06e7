package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
)

type mockRecorder struct {
	entries []AuditEntry
	err     error
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) error {
	m.entries = append(m.entries, entry)
	return m.err
}

func TestAudit_RecordsAdmissionAccess(t *testing.T) {
	id := uuid.New().String()
	c, _ := newContext(http.MethodPost, "/api/v1/admissions/"+id+"/discharge")
	c.Set("request_id", "req-42")
	withIdentity(c, "u-1", auth.RoleConsultant)

	rec := &mockRecorder{}
	var buf bytes.Buffer
	if err := Audit(zerolog.New(&buf), rec)(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.UserID != "u-1" || e.AdmissionID != id || e.Resource != "admissions" || e.Action != "create" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.RequestID != "req-42" || e.StatusCode != http.StatusOK {
		t.Errorf("expected request id and status, got %+v", e)
	}
	if !strings.Contains(buf.String(), `"type":"clinical_audit"`) {
		t.Errorf("expected audit log line, got %s", buf.String())
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/health")
	rec := &mockRecorder{}
	Audit(zerolog.Nop(), rec)(ok)(c)
	if len(rec.entries) != 0 {
		t.Errorf("expected /health not to be audited, got %d entries", len(rec.entries))
	}
}

func TestAudit_CapturesHandlerErrorStatus(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/v1/burn-assessments/x")
	rec := &mockRecorder{}
	err := Audit(zerolog.Nop(), rec)(func(echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden)
	})(c)
	if err == nil {
		t.Fatal("expected handler error to propagate")
	}
	if rec.entries[0].StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 recorded, got %d", rec.entries[0].StatusCode)
	}
}

func TestAudit_RecorderFailureDoesNotFailRequest(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/v1/cme/modules")
	var buf bytes.Buffer
	rec := &mockRecorder{err: errors.New("audit store down")}
	if err := Audit(zerolog.New(&buf), rec)(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "audit store down") {
		t.Errorf("expected recorder failure to be logged, got %s", buf.String())
	}
}

func TestAudit_NilRecorder(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/v1/burns/regions")
	if err := Audit(zerolog.Nop(), nil)(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuditRecorderFunc(t *testing.T) {
	var got AuditEntry
	var r AuditRecorder = AuditRecorderFunc(func(e AuditEntry) error {
		got = e
		return nil
	})
	r.RecordAccess(AuditEntry{Path: "/api/v1/x"})
	if got.Path != "/api/v1/x" {
		t.Errorf("expected entry passed through, got %+v", got)
	}
}

func TestExtractHelpers(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		path      string
		resource  string
		admission string
	}{
		{"/api/v1/admissions/" + id, "admissions", id},
		{"/api/v1/admissions/" + id + "/burn-assessments", "admissions", id},
		{"/api/v1/admissions/not-a-uuid", "admissions", ""},
		{"/api/v1/diabetic-foot/calculate", "diabetic-foot", ""},
		{"/api/v1/", "unknown", ""},
	}
	for _, tt := range tests {
		if got := extractResource(tt.path); got != tt.resource {
			t.Errorf("extractResource(%s) = %s, want %s", tt.path, got, tt.resource)
		}
		if got := extractAdmissionID(tt.path); got != tt.admission {
			t.Errorf("extractAdmissionID(%s) = %s, want %s", tt.path, got, tt.admission)
		}
	}

	for method, want := range map[string]string{
		http.MethodGet: "read", http.MethodHead: "read", http.MethodPost: "create",
		http.MethodPut: "update", http.MethodPatch: "update", http.MethodDelete: "delete",
	} {
		if got := httpMethodToAction(method); got != want {
			t.Errorf("httpMethodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}
