package service

import "github.com/spec-kit/incident-portal/internal/domain"

// canView reports whether identity may see incident: admins see everything,
// support staff what is assigned to them and employees what they reported.
func canView(identity domain.Identity, incident domain.Incident) bool {
	switch identity.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSupport:
		return incident.AssignedToID == identity.ID
	case domain.RoleEmployee:
		return incident.ReporterID == identity.ID
	default:
		return false
	}
}

// canAct reports whether identity may press workflow buttons on incident.
func canAct(identity domain.Identity, incident domain.Incident) bool {
	switch identity.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSupport:
		return incident.AssignedToID == identity.ID
	default:
		return false
	}
}

// scopeFilter pins the role-specific part of a list filter. Unknown roles get
// the employee scope.
func scopeFilter(identity domain.Identity, filter IncidentFilter) IncidentFilter {
	switch identity.Role {
	case domain.RoleAdmin:
	case domain.RoleSupport:
		filter.AssignedToID = identity.ID
	default:
		filter.ReporterID = identity.ID
	}
	return filter
}
