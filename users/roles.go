package users

import "strings"

// RoleType represents the authority carried in an access token
type RoleType string

const (
	RoleAdmin         RoleType = "ADMIN"          // Back office administrator
	RoleUser          RoleType = "USER"           // Farmer facing account
	RoleEmployee      RoleType = "EMPLOYEE"       // Field employee filling surveys
	RoleSurveyor      RoleType = "SURVEYOR"       // Alias of employee used by older tokens
	RoleLab           RoleType = "LAB"            // Soil and seed testing lab
	RoleLabTechnician RoleType = "LAB_TECHNICIAN" // Alias of lab
)

// Area is a role gated section of the application
type Area string

const (
	AreaAdmin    Area = "admin"
	AreaEmployee Area = "employee"
	AreaLab      Area = "lab"
)

// NormalizeRole upper-cases a raw authority and strips the ROLE_ prefix
// Spring style backends add, so "role_admin" and "ADMIN" compare equal.
func NormalizeRole(raw string) RoleType {
	r := strings.ToUpper(strings.TrimSpace(raw))
	r = strings.TrimPrefix(r, "ROLE_")
	return RoleType(r)
}

// DashboardPath returns the landing page for a role, "/" when the role is unknown.
func DashboardPath(role RoleType) string {
	switch NormalizeRole(string(role)) {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleUser:
		return "/dashboard"
	case RoleEmployee, RoleSurveyor:
		return "/employee/dashboard"
	case RoleLab, RoleLabTechnician:
		return "/lab/dashboard"
	}
	return "/"
}

// AreaFor returns the area a role belongs to.
func AreaFor(role RoleType) (Area, bool) {
	switch NormalizeRole(string(role)) {
	case RoleAdmin:
		return AreaAdmin, true
	case RoleEmployee, RoleSurveyor:
		return AreaEmployee, true
	case RoleLab, RoleLabTechnician:
		return AreaLab, true
	}
	return "", false
}

// CanAccess reports whether role may enter area.
func CanAccess(role RoleType, area Area) bool {
	a, ok := AreaFor(role)
	return ok && a == area
}

// HasRole reports whether role matches any of allowed after normalisation.
func HasRole(role RoleType, allowed ...RoleType) bool {
	r := NormalizeRole(string(role))
	for _, a := range allowed {
		if r == NormalizeRole(string(a)) {
			return true
		}
	}
	return false
}

// AreaRoles lists the roles accepted by the dedicated login screen of an area.
func AreaRoles(area Area) []RoleType {
	switch area {
	case AreaAdmin:
		return []RoleType{RoleAdmin}
	case AreaEmployee:
		return []RoleType{RoleEmployee, RoleSurveyor}
	case AreaLab:
		return []RoleType{RoleLab, RoleLabTechnician}
	}
	return nil
}
