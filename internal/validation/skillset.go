package validation

import "strings"

// AddSkill appends tag unless it is blank or already present (case-insensitive).
// The input slice is not modified.
func AddSkill(tags []string, tag string) []string {
	out := NormalizeSkills(tags)
	tag = strings.TrimSpace(tag)
	if tag == "" || containsFold(out, tag) {
		return out
	}
	return append(out, tag)
}

// RemoveSkill drops every tag equal to tag ignoring case and surrounding space.
func RemoveSkill(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	out := make([]string, 0, len(tags))
	for _, existing := range NormalizeSkills(tags) {
		if strings.EqualFold(existing, tag) {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// NormalizeSkills trims tags, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling and the original order.
func NormalizeSkills(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || containsFold(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// ParseSkillset splits the CRM's comma-joined form.
func ParseSkillset(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return []string{}
	}
	return NormalizeSkills(strings.Split(joined, ","))
}

// JoinSkillset produces the CRM's comma-joined form.
func JoinSkillset(tags []string) string {
	return strings.Join(NormalizeSkills(tags), ", ")
}

func containsFold(tags []string, tag string) bool {
	for _, existing := range tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}
