package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
)

const apiPrefix = "/api/v1/"

// AuditEntry records one access to clinical data.
type AuditEntry struct {
	UserID      string
	UserRoles   []string
	Resource    string
	AdmissionID string
	Action      string // read, create, update, delete
	IPAddress   string
	UserAgent   string
	Path        string
	Method      string
	Timestamp   time.Time
	RequestID   string
	StatusCode  int
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc adapts a function to AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every request under /api/v1/ after the handler has run. When a
// recorder is given the entry is also passed to it; recorder failures are
// logged and never fail the request.
func Audit(logger zerolog.Logger, recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if !strings.HasPrefix(path, apiPrefix) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			ctx := req.Context()
			entry := AuditEntry{
				UserID:      auth.UserIDFromContext(ctx),
				UserRoles:   auth.RolesFromContext(ctx),
				Resource:    extractResource(path),
				AdmissionID: extractAdmissionID(path),
				Action:      httpMethodToAction(req.Method),
				IPAddress:   c.RealIP(),
				UserAgent:   req.UserAgent(),
				Path:        path,
				Method:      req.Method,
				Timestamp:   time.Now().UTC(),
				RequestID:   requestID(c),
				StatusCode:  status,
			}

			if recorder != nil {
				if recErr := recorder.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "clinical_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("admission_id", entry.AdmissionID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("clinical_access")

			return err
		}
	}
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource returns the first path segment after /api/v1/:
//
//	/api/v1/admissions/<id>/discharge -> admissions
//	/api/v1/burns/calculate           -> burns
func extractResource(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, apiPrefix), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}

// extractAdmissionID returns the admission id from /api/v1/admissions/<id>/...
func extractAdmissionID(path string) string {
	rest, ok := strings.CutPrefix(path, apiPrefix+"admissions/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}
