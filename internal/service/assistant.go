package service

import "strings"

// Assistant is the employee help bot. Replies are canned and chosen by
// keyword; it never calls the CRM.
type Assistant struct{}

type cannedReply struct {
	keywords []string
	reply    string
}

var cannedReplies = []cannedReply{
	{
		keywords: []string{"password", "locked", "login", "sign in"},
		reply:    "For password or sign-in problems, submit an IT incident describing the account affected. Do not include your password.",
	},
	{
		keywords: []string{"vpn", "wifi", "network", "internet"},
		reply:    "Connectivity issues are handled by IT. Restart the VPN client first; if it still fails, submit an incident with the error message.",
	},
	{
		keywords: []string{"payroll", "payslip", "salary", "leave", "holiday", "benefit"},
		reply:    "Pay and leave questions go to HR. Submit an incident and HR will reply through the incident chat.",
	},
	{
		keywords: []string{"leak", "light", "heating", "air", "desk", "door", "toilet"},
		reply:    "Building issues are handled by Facilities. Include the floor and room in your incident description.",
	},
	{
		keywords: []string{"status", "update", "progress", "when"},
		reply:    "You can follow every incident you reported on your dashboard. Its status moves from New to Accepted, In progress and Resolved.",
	},
	{
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hello! Tell me what is wrong and I will point you to the right team.",
	},
}

const fallbackReply = "I am not sure about that one. Submit an incident and a member of the support team will get back to you."

// Reply picks the first canned answer whose keywords appear in text as
// whole words. Plural and -ing/-ed forms of a keyword also count.
func (Assistant) Reply(text string) string {
	words := tokenize(text)
	for _, canned := range cannedReplies {
		for _, keyword := range canned.keywords {
			if containsKeyword(words, strings.Fields(keyword)) {
				return canned.reply
			}
		}
	}
	return fallbackReply
}

// containsKeyword reports whether the keyword's words appear consecutively.
func containsKeyword(words, keyword []string) bool {
	if len(keyword) == 0 {
		return false
	}
	for i := 0; i+len(keyword) <= len(words); i++ {
		matched := true
		for j, part := range keyword {
			if !wordMatches(words[i+j], part) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func wordMatches(word, keyword string) bool {
	if word == keyword {
		return true
	}
	if len(keyword) <= 3 {
		return false
	}
	for _, suffix := range []string{"s", "es", "ed", "ing"} {
		if word == keyword+suffix {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
