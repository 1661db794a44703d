package domain

import (
	"errors"
	"strings"
)

// ErrUnknownValue is returned when an enumerated field cannot be parsed.
var ErrUnknownValue = errors.New("unknown value")

// normalizeToken lowercases and folds '-', '_' and repeated spaces so that
// "In-progress", "in_progress" and "In  Progress" compare equal.
func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
