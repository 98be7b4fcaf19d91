// Package extract pulls contact email addresses out of free-form post text,
// tolerating the obfuscations people use to dodge crawlers ("jane [at]
// example [dot] com" and friends).
package extract

import (
	"regexp"
	"strings"
)

const emailCore = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

// Context patterns: the address follows a cue phrase, so these hits are the
// most likely real contact and get listed first. Only the capture group is
// kept.
var contextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)e-?mail\s*(?:address|id)?[\s:]*(` + emailCore + `)`),
	regexp.MustCompile(`(?i)send\s+(?:your\s+)?(?:resume|cv)(?:\s+to)?[\s:]*(` + emailCore + `)`),
	regexp.MustCompile(`(?i)apply(?:\s+to)?[\s:]*(` + emailCore + `)`),
	regexp.MustCompile(`(?i)contact[\s:]*(` + emailCore + `)`),
	regexp.MustCompile(`(?i)reach\s+(?:out|me)(?:\s+at)?[\s:]*(` + emailCore + `)`),
	regexp.MustCompile(`(?i)(?:my|our)\s+email[\s:]*(` + emailCore + `)`),
}

// General patterns: standalone addresses plus the common obfuscation shapes.
// Matches are cleaned by normalizeCandidate before validation.
var generalPatterns = []*regexp.Regexp{
	regexp.MustCompile(emailCore),
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+\s*@\s*[a-zA-Z0-9.-]+\s*\.\s*[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+\s*\[at\]\s*[a-zA-Z0-9.-]+\s*\[dot\]\s*[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+\s*\[at\]\s*[a-zA-Z0-9.-]+\s*\(dot\)\s*[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+\s*\[at\]\s*[a-zA-Z0-9.-]+\s*\[\.\]\s*[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+\s*\(at\)\s*[a-zA-Z0-9.-]+\s*\(dot\)\s*[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+\s+at\s+[a-zA-Z0-9.-]+\s+dot\s+[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+\s*@\s*[a-zA-Z0-9.-]+\s+dot\s+[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+\s*\[\.\]\s*[a-zA-Z0-9.-]+\s*\[\.\]\s*[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)(?:e-?mail|contact):?\s*` + emailCore),
	regexp.MustCompile(`(?i)send\s+(?:your\s+)?(?:resume|cv)(?:\s+to)?:?\s*` + emailCore),
	regexp.MustCompile(`(?i)apply(?:\s+to)?:?\s*` + emailCore),
}

var (
	reStrict     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	reObfAt      = regexp.MustCompile(`(?i)\s*[\[(]at[\])]\s*`)
	reBareAt     = regexp.MustCompile(`(?i)\s+at\s+`)
	reObfDot     = regexp.MustCompile(`(?i)\s*[\[(]dot[\])]\s*`)
	reBareDot    = regexp.MustCompile(`(?i)\s+dot\s+`)
	reBracketDot = regexp.MustCompile(`\s*\[\.\]\s*`)
)

// Emails returns the validated addresses found in text, deduplicated,
// first-seen order preserved. Context-pass hits come before general-pass
// hits, so Emails(t)[0] is the best primary contact guess. Empty input
// yields an empty result, never an error.
func Emails(text string) []string {
	if text == "" {
		return nil
	}

	text = cleanText(text)

	var found []string

	for _, re := range contextPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			addr := strings.TrimSpace(m[1])
			if strings.Contains(addr, "@") {
				found = append(found, addr)
			}
		}
	}

	for _, re := range generalPatterns {
		for _, raw := range re.FindAllString(text, -1) {
			addr := normalizeCandidate(raw)
			if reStrict.MatchString(addr) {
				found = append(found, addr)
			}
		}
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(found))
	for _, e := range found {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// normalizeCandidate turns one raw pattern hit into a plain address: strip a
// leading "email:"-style label, undo the @/. obfuscations, then squeeze out
// any remaining whitespace. The result still has to pass reStrict.
func normalizeCandidate(s string) string {
	if i := strings.Index(s, ":"); i >= 0 {
		rest := s[i+1:]
		if strings.Contains(rest, "@") {
			s = strings.TrimSpace(rest)
		}
	}

	s = reObfAt.ReplaceAllString(s, "@")
	s = reBareAt.ReplaceAllString(s, "@")
	s = reObfDot.ReplaceAllString(s, ".")
	s = reBareDot.ReplaceAllString(s, ".")
	s = reBracketDot.ReplaceAllString(s, ".")

	return strings.Join(strings.Fields(s), "")
}
