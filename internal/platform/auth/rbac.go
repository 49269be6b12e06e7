package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Unit roles.
const (
	RoleAdmin        = "admin"
	RoleConsultant   = "consultant"
	RoleRegistrar    = "registrar"
	RoleHouseOfficer = "house_officer"
	RoleNurse        = "nurse"
)

// ClinicalReaders may view records and run calculators.
var ClinicalReaders = []string{RoleConsultant, RoleRegistrar, RoleHouseOfficer, RoleNurse}

// ClinicalWriters may record assessments and admissions.
var ClinicalWriters = []string{RoleConsultant, RoleRegistrar, RoleHouseOfficer}

// Dischargers may sign a discharge.
var Dischargers = []string{RoleConsultant, RoleRegistrar}

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasRole(RolesFromContext(c.Request().Context()), roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// HasRole reports whether userRoles grants any of required. Admin grants all.
func HasRole(userRoles []string, required ...string) bool {
	for _, has := range userRoles {
		if has == RoleAdmin {
			return true
		}
		for _, r := range required {
			if has == r {
				return true
			}
		}
	}
	return false
}
