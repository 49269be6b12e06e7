package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(roles ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), "user-1", "", roles))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole_Allowed(t *testing.T) {
	c, rec := contextWithRoles(RoleNurse)
	err := RequireRole(ClinicalReaders...)(ok)(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	c, _ := contextWithRoles(RoleNurse)
	err := RequireRole(Dischargers...)(ok)(c)
	expectStatus(t, err, http.StatusForbidden)
}

func TestRequireRole_NoRoles(t *testing.T) {
	c, _ := contextWithRoles()
	err := RequireRole(ClinicalReaders...)(ok)(c)
	expectStatus(t, err, http.StatusForbidden)
}

func TestRequireRole_AdminBypass(t *testing.T) {
	c, _ := contextWithRoles(RoleAdmin)
	if err := RequireRole(RoleConsultant)(ok)(c); err != nil {
		t.Error("admin should bypass role checks")
	}
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		name     string
		has      []string
		required []string
		want     bool
	}{
		{"match", []string{RoleRegistrar}, Dischargers, true},
		{"no match", []string{RoleHouseOfficer}, Dischargers, false},
		{"admin", []string{RoleAdmin}, []string{"anything"}, true},
		{"empty", nil, ClinicalWriters, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRole(tt.has, tt.required...); got != tt.want {
				t.Errorf("HasRole(%v, %v) = %v, want %v", tt.has, tt.required, got, tt.want)
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-123", "", []string{RoleNurse})
	if uid := UserIDFromContext(ctx); uid != "user-123" {
		t.Errorf("expected user-123, got %s", uid)
	}
	if empty := UserIDFromContext(context.Background()); empty != "" {
		t.Errorf("expected empty string, got %s", empty)
	}
	if actor := Actor(ctx); actor != "user-123" {
		t.Errorf("expected actor to fall back to user ID, got %s", actor)
	}
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("expected no identity on a bare context")
	}
}

func TestIsPublicPath(t *testing.T) {
	if !IsPublicPath("/metrics") {
		t.Error("expected /metrics to be public")
	}
	if IsPublicPath("/api/v1/admissions") {
		t.Error("expected admissions to be protected")
	}
}
