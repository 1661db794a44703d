package domain

import (
	"fmt"
	"time"
)

// IncidentStatus enumerates lifecycle states for incidents.
type IncidentStatus string

const (
	StatusNew        IncidentStatus = "New"
	StatusAccepted   IncidentStatus = "Accepted"
	StatusInProgress IncidentStatus = "In progress"
	StatusResolved   IncidentStatus = "Resolved"
	StatusRejected   IncidentStatus = "Rejected"
)

// Severity enumerates incident urgency.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Category is the department an incident is routed to.
type Category string

const (
	CategoryIT         Category = "IT"
	CategoryHR         Category = "HR"
	CategoryFacilities Category = "Facilities"
)

var (
	allStatuses   = []IncidentStatus{StatusNew, StatusAccepted, StatusInProgress, StatusResolved, StatusRejected}
	allSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}
	allCategories = []Category{CategoryIT, CategoryHR, CategoryFacilities}
)

// Incident is a reported issue tracked by the CRM.
type Incident struct {
	ID              string
	Title           string
	Description     string
	Category        Category
	Severity        Severity
	Status          IncidentStatus
	ReporterID      string
	ReporterName    string
	ReporterEmail   string
	AssignedToID    string
	AssignedToName  string
	AssignedToEmail string
	AISummary       string
	AIEmailText     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Classification is the externally computed triage result.
type Classification struct {
	Category  Category
	Severity  Severity
	Summary   string
	EmailText string
}

// StaffAssignment is the resolver suggested by the CRM.
type StaffAssignment struct {
	StaffID string
	Name    string
	Email   string
	Reason  string
}

// Statuses returns every known status in workflow order.
func Statuses() []IncidentStatus {
	return append([]IncidentStatus(nil), allStatuses...)
}

// Severities returns every known severity, lowest first.
func Severities() []Severity {
	return append([]Severity(nil), allSeverities...)
}

// Categories returns every known category.
func Categories() []Category {
	return append([]Category(nil), allCategories...)
}

// ParseStatus maps loosely formatted input onto a known status.
func ParseStatus(s string) (IncidentStatus, error) {
	key := normalizeToken(s)
	for _, status := range allStatuses {
		if normalizeToken(string(status)) == key {
			return status, nil
		}
	}
	return "", fmt.Errorf("status %q: %w", s, ErrUnknownValue)
}

// ParseSeverity maps loosely formatted input onto a known severity.
func ParseSeverity(s string) (Severity, error) {
	key := normalizeToken(s)
	for _, sev := range allSeverities {
		if normalizeToken(string(sev)) == key {
			return sev, nil
		}
	}
	return "", fmt.Errorf("severity %q: %w", s, ErrUnknownValue)
}

// ParseCategory maps loosely formatted input onto a known category.
func ParseCategory(s string) (Category, error) {
	key := normalizeToken(s)
	for _, cat := range allCategories {
		if normalizeToken(string(cat)) == key {
			return cat, nil
		}
	}
	return "", fmt.Errorf("category %q: %w", s, ErrUnknownValue)
}
