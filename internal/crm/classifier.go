package crm

import (
	"fmt"
	"strings"

	"github.com/spec-kit/incident-portal/internal/domain"
)

// Classifier stands in for the CRM's AI triage in the Memory backend.
type Classifier interface {
	Classify(title, description string) domain.Classification
}

// KeywordClassifier is a deterministic keyword matcher.
type KeywordClassifier struct{}

var categoryKeywords = map[domain.Category][]string{
	domain.CategoryIT:         {"laptop", "vpn", "password", "network", "wifi", "printer", "email", "software", "login", "monitor"},
	domain.CategoryHR:         {"payroll", "payslip", "salary", "leave", "benefit", "holiday", "contract", "harassment", "onboarding"},
	domain.CategoryFacilities: {"leak", "light", "desk", "chair", "air conditioning", "heating", "door", "toilet", "parking", "cleaning"},
}

var severityKeywords = []struct {
	severity domain.Severity
	words    []string
}{
	{domain.SeverityHigh, []string{"urgent", "outage", "down", "cannot", "can't", "security", "flood", "fire", "harassment"}},
	{domain.SeverityMedium, []string{"slow", "intermittent", "drops", "wrong", "broken", "error"}},
}

// Classify picks the category with the most keyword hits (IT on ties or no
// hits) and the first severity band with a hit (Low otherwise).
func (KeywordClassifier) Classify(title, description string) domain.Classification {
	text := strings.ToLower(title + " " + description)

	category := domain.CategoryIT
	bestHits := 0
	for _, cat := range domain.Categories() {
		hits := 0
		for _, word := range categoryKeywords[cat] {
			if strings.Contains(text, word) {
				hits++
			}
		}
		if hits > bestHits {
			category = cat
			bestHits = hits
		}
	}

	severity := domain.SeverityLow
	for _, band := range severityKeywords {
		if containsAny(text, band.words) {
			severity = band.severity
			break
		}
	}

	summary := summarize(title, description)
	return domain.Classification{
		Category: category,
		Severity: severity,
		Summary:  summary,
		EmailText: fmt.Sprintf("Hello,\n\nWe received your %s request (%s priority): %s\nA member of the team will follow up shortly.\n",
			category, strings.ToLower(string(severity)), summary),
	}
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func summarize(title, description string) string {
	summary := strings.TrimSpace(title)
	if summary == "" {
		summary = strings.TrimSpace(description)
		if idx := strings.IndexAny(summary, ".!?\n"); idx > 0 {
			summary = summary[:idx]
		}
	}
	const max = 120
	if len(summary) > max {
		summary = summary[:max-3] + "..."
	}
	return summary
}
