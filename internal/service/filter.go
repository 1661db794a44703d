package service

import (
	"sort"
	"strings"

	"github.com/spec-kit/incident-portal/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// IncidentFilter narrows an incident list. Empty fields are inactive; an
// incident matches when every active field matches.
type IncidentFilter struct {
	Search       string
	Department   domain.Category
	Severity     domain.Severity
	Status       domain.IncidentStatus
	AssignedToID string
	ReporterID   string
}

// Matches reports whether incident satisfies all active filters.
func (f IncidentFilter) Matches(incident domain.Incident) bool {
	if f.Department != "" && incident.Category != f.Department {
		return false
	}
	if f.Severity != "" && incident.Severity != f.Severity {
		return false
	}
	if f.Status != "" && incident.Status != f.Status {
		return false
	}
	if f.AssignedToID != "" && incident.AssignedToID != f.AssignedToID {
		return false
	}
	if f.ReporterID != "" && incident.ReporterID != f.ReporterID {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		return matchesSearch(incident, term)
	}
	return true
}

func matchesSearch(incident domain.Incident, term string) bool {
	for _, field := range []string{
		incident.ID,
		incident.Title,
		incident.Description,
		incident.ReporterName,
		incident.AssignedToName,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// FilterIncidents returns the matching incidents, newest first. The input is
// not modified.
func FilterIncidents(incidents []domain.Incident, filter IncidentFilter) []domain.Incident {
	out := make([]domain.Incident, 0, len(incidents))
	for _, incident := range incidents {
		if filter.Matches(incident) {
			out = append(out, incident)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// PageRequest selects a 1-based page.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// Page is one slice of a filtered list.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

func paginate[T any](items []T, req PageRequest) Page[T] {
	req = req.normalize()
	start := len(items)
	if req.Page-1 < (len(items)+req.PageSize-1)/req.PageSize {
		start = (req.Page - 1) * req.PageSize
	}
	end := start + req.PageSize
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Items:    items[start:end],
		Total:    len(items),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
}
