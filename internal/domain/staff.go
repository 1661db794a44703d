package domain

import "fmt"

// Role enumerates portal roles.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleSupport  Role = "support"
	RoleAdmin    Role = "admin"
)

// Availability describes whether a staff member can take new incidents.
type Availability string

const (
	AvailabilityAvailable   Availability = "Available"
	AvailabilityBusy        Availability = "Busy"
	AvailabilityUnavailable Availability = "Unavailable"
)

// Staff is a portal user as stored by the CRM.
type Staff struct {
	ID           string
	Name         string
	Email        string
	Department   string
	Skillset     []string
	Availability Availability
	Role         Role
}

// ParseRole maps loosely formatted input onto a known role.
func ParseRole(s string) (Role, error) {
	key := normalizeToken(s)
	for _, role := range []Role{RoleEmployee, RoleSupport, RoleAdmin} {
		if string(role) == key {
			return role, nil
		}
	}
	return "", fmt.Errorf("role %q: %w", s, ErrUnknownValue)
}

// ParseAvailability maps loosely formatted input onto a known availability.
func ParseAvailability(s string) (Availability, error) {
	key := normalizeToken(s)
	for _, a := range []Availability{AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable} {
		if normalizeToken(string(a)) == key {
			return a, nil
		}
	}
	return "", fmt.Errorf("availability %q: %w", s, ErrUnknownValue)
}
