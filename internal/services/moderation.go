package services

import (
	"regexp"
	"strings"
)

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

var (
	urlPattern     = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	emailPattern   = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern   = regexp.MustCompile(`\+?\d{2,3}[-.\s]?\d{3,5}[-.\s]?\d{4,5}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	repeatPattern  = regexp.MustCompile(`(?i)(a{4,}|b{4,}|c{4,}|d{4,}|e{4,}|f{4,}|g{4,}|h{4,}|i{4,}|j{4,}|k{4,}|l{4,}|m{4,}|n{4,}|o{4,}|p{4,}|q{4,}|r{4,}|s{4,}|t{4,}|u{4,}|v{4,}|w{4,}|x{4,}|y{4,}|z{4,}|!{4,}|\?{4,}|\.{4,})`)
	allCapsPattern = regexp.MustCompile(`[A-Z]{5,}`)
)

// ContentFilter screens free text written by users (review comments).
// It is safe for concurrent use.
type ContentFilter struct {
	banned []*regexp.Regexp
}

func NewContentFilter(extraWords ...string) *ContentFilter {
	words := append(append([]string{}, bannedWords...), extraWords...)
	f := &ContentFilter{banned: make([]*regexp.Regexp, 0, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		f.banned = append(f.banned, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return f
}

// Check returns false and a reason code when text must be rejected.
func (f *ContentFilter) Check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range f.banned {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if emailPattern.MatchString(text) || phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if repeatPattern.MatchString(text) {
		return false, "spam_detected"
	}
	if len(allCapsPattern.FindAllString(text, -1)) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}

var rejectionMessages = map[string]string{
	"inappropriate_language":   "Your review contains inappropriate language.",
	"url_not_allowed":          "URLs and web links are not allowed in reviews.",
	"contact_info_not_allowed": "Contact information is not allowed in reviews.",
	"spam_detected":            "Your review appears to be spam.",
	"excessive_caps":           "Please avoid excessive capital letters.",
}

func rejectionMessage(reason string) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return "Your review could not be accepted."
}
