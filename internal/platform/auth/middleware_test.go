package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func createTestToken(t *testing.T, claims Claims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenStr
}

func validClaims(subject string, roles ...string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Name:  "Dr Okafor",
		Unit:  "plastics",
		Roles: roles,
	}
}

func runJWT(t *testing.T, cfg JWTConfig, header string, handler echo.HandlerFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return JWTMiddleware(cfg)(handler)(c)
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func expectStatus(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d, got nil error", code)
	}
	httpErr, isHTTP := err.(*echo.HTTPError)
	if !isHTTP {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != code {
		t.Errorf("expected %d, got %d", code, httpErr.Code)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	err := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "", ok)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runJWT(t, JWTConfig{SigningKey: testSigningKey}, tt.header, ok)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tokenStr := createTestToken(t, validClaims("user-123", RoleRegistrar), testSigningKey)

	var handlerCalled bool
	err := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+tokenStr, func(c echo.Context) error {
		handlerCalled = true
		return c.String(http.StatusOK, "ok")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Error("handler was not called")
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	claims := validClaims("user-123")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-1 * time.Hour))
	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	tokenStr := createTestToken(t, claims, testSigningKey)

	err := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+tokenStr, ok)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	tokenStr := createTestToken(t, validClaims("user-123"), []byte("another-key"))
	err := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+tokenStr, ok)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_IssuerMismatch(t *testing.T) {
	claims := validClaims("user-123")
	claims.Issuer = "https://elsewhere.example"
	tokenStr := createTestToken(t, claims, testSigningKey)

	cfg := JWTConfig{SigningKey: testSigningKey, Issuer: "https://idp.unth.example"}
	err := runJWT(t, cfg, "Bearer "+tokenStr, ok)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_OtherUnit(t *testing.T) {
	claims := validClaims("user-123", RoleConsultant)
	claims.Unit = "orthopaedics"
	tokenStr := createTestToken(t, claims, testSigningKey)

	err := runJWT(t, JWTConfig{SigningKey: testSigningKey, Unit: "plastics"}, "Bearer "+tokenStr, ok)
	expectStatus(t, err, http.StatusForbidden)
}

func TestJWTMiddleware_RequiresExpiryAndSubject(t *testing.T) {
	noExp := validClaims("user-123")
	noExp.ExpiresAt = nil
	err := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+createTestToken(t, noExp, testSigningKey), ok)
	expectStatus(t, err, http.StatusUnauthorized)

	noSub := validClaims("")
	err = runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+createTestToken(t, noSub, testSigningKey), ok)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_Leeway(t *testing.T) {
	claims := validClaims("user-123")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Second))
	tokenStr := createTestToken(t, claims, testSigningKey)

	err := runJWT(t, JWTConfig{SigningKey: testSigningKey, Leeway: time.Minute}, "Bearer "+tokenStr, ok)
	if err != nil {
		t.Errorf("expected clock skew within leeway to pass, got %v", err)
	}
}

func rsaKeyServer(t *testing.T, kid string, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	n := base64.RawURLEncoding.EncodeToString(key.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes())
	body := fmt.Sprintf(`{"keys":[{"kty":"RSA","kid":%q,"alg":"RS256","n":%q,"e":%q}]}`, kid, n, e)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signRS256(t *testing.T, claims Claims, kid string, key *rsa.PrivateKey) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign RS256 token: %v", err)
	}
	return s
}

func TestJWTMiddleware_JWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := rsaKeyServer(t, "idp-1", key)
	cfg := JWTConfig{JWKSURL: srv.URL, Issuer: "https://idp.unth.example"}

	claims := validClaims("user-789", RoleNurse)
	claims.Issuer = "https://idp.unth.example"
	if err := runJWT(t, cfg, "Bearer "+signRS256(t, claims, "idp-1", key), ok); err != nil {
		t.Errorf("expected RS256 token to verify against JWKS, got %v", err)
	}

	err = runJWT(t, cfg, "Bearer "+signRS256(t, claims, "unknown", key), ok)
	expectStatus(t, err, http.StatusUnauthorized)

	hmac := createTestToken(t, claims, testSigningKey)
	err = runJWT(t, cfg, "Bearer "+hmac, ok)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_SharedKeyRejectsRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tokenStr := signRS256(t, validClaims("user-123"), "idp-1", key)
	err = runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+tokenStr, ok)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Bearer", "", false},
		{"Basic abc", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestJWTMiddleware_ClaimsExtraction(t *testing.T) {
	tokenStr := createTestToken(t, validClaims("user-456", RoleConsultant, RoleRegistrar), testSigningKey)

	err := runJWT(t, JWTConfig{SigningKey: testSigningKey, Unit: "plastics"}, "Bearer "+tokenStr, func(c echo.Context) error {
		ctx := c.Request().Context()

		if uid := UserIDFromContext(ctx); uid != "user-456" {
			t.Errorf("expected user_id=user-456, got %s", uid)
		}
		roles := RolesFromContext(ctx)
		if len(roles) != 2 || roles[0] != RoleConsultant || roles[1] != RoleRegistrar {
			t.Errorf("expected roles=[consultant registrar], got %v", roles)
		}
		if actor := Actor(ctx); actor != "Dr Okafor" {
			t.Errorf("expected actor=Dr Okafor, got %s", actor)
		}
		if id, found := IdentityFromContext(ctx); !found || id.Name != "Dr Okafor" {
			t.Errorf("expected identity on context, got %+v", id)
		}
		return c.String(http.StatusOK, "ok")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_Skipper(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/health")

	cfg := JWTConfig{SigningKey: testSigningKey, Skipper: AuthSkipper}
	if err := JWTMiddleware(cfg)(ok)(c); err != nil {
		t.Fatalf("expected /health to skip auth, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestDevAuthMiddleware_WithDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if uid := UserIDFromContext(ctx); uid != "dev-user" {
			t.Errorf("expected user_id=dev-user, got %s", uid)
		}
		roles := RolesFromContext(ctx)
		if len(roles) != 1 || roles[0] != RoleAdmin {
			t.Errorf("expected roles=[admin], got %v", roles)
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := DevAuthMiddleware()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWKSCache_NoURL(t *testing.T) {
	cache := NewJWKSCache("", time.Minute)
	if _, err := cache.GetKey("kid-1"); err == nil {
		t.Error("expected error without a JWKS URL")
	}
}

func TestJWKSCache_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"keys":[{"kty":"RSA","kid":"k1","n":"AQAB","e":"AQAB"},{"kty":"EC","kid":"k2"}]}`))
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.URL, time.Minute)
	key, err := cache.GetKey("k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.E != 65537 {
		t.Errorf("expected exponent 65537, got %d", key.E)
	}
	if _, err := cache.GetKey("k2"); err == nil {
		t.Error("expected non-RSA key to be skipped")
	}
}
