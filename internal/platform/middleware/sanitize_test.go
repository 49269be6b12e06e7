package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func sanitizeRequest(req *http.Request, logger zerolog.Logger) error {
	c := echo.New().NewContext(req, httptest.NewRecorder())
	return Sanitize(logger)(ok)(c)
}

func TestSanitize_AllowsClean(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/diabetic-foot/assessments?risk_category=high&limit=10", nil)
	if err := sanitizeRequest(req, zerolog.Nop()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSanitize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		build func() *http.Request
	}{
		{"encoded traversal", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/%2e%2e/etc/passwd", nil)
		}},
		{"null byte in path", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/admissions%00", nil)
		}},
		{"null byte in query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/admissions?ward=a%00b", nil)
		}},
		{"script in query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/admissions?ward=%3Cscript%3Ealert(1)", nil)
		}},
		{"javascript scheme", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/admissions?next=javascript:alert(1)", nil)
		}},
		{"oversized header", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/admissions", nil)
			r.Header.Set("X-Notes", strings.Repeat("a", maxHeaderValueSize+1))
			return r
		}},
		{"header injection", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/admissions", nil)
			r.Header["X-Ward"] = []string{"a\r\nSet-Cookie: x=1"}
			return r
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, sanitizeRequest(tt.build(), zerolog.Nop()), http.StatusBadRequest)
		})
	}
}

func TestSanitize_LogsSQLPatterns(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admissions?ward=x%27+UNION+SELECT+1", nil)
	if err := sanitizeRequest(req, zerolog.New(&buf)); err != nil {
		t.Fatalf("expected SQL patterns to be logged, not rejected: %v", err)
	}
	if !strings.Contains(buf.String(), "SQL injection pattern") {
		t.Errorf("expected warning, got %s", buf.String())
	}
}

func TestContainsPathTraversal(t *testing.T) {
	for s, want := range map[string]bool{
		"/a/../b":     true,
		"/a/%2E%2E/b": true,
		"/a/%252e/b":  true,
		"/a/b.c/d":    false,
		"/api/v1/cme": false,
	} {
		if got := containsPathTraversal(s); got != want {
			t.Errorf("containsPathTraversal(%q) = %v, want %v", s, got, want)
		}
	}
}
