// internal/push/validator.go
package push

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Channel length rules: 180-220 characters is the target, with a small
// tolerance either side before the text is rejected.
const (
	minPushLength = 160
	maxPushLength = 240
	trimPushTo    = 220
)

var (
	capsRunPattern      = regexp.MustCompile(`\p{Lu}{4,}`)
	secondPersonPattern = regexp.MustCompile(`(?i)\byou\b|\byour\b|\byours\b`)
	capsWordPattern     = regexp.MustCompile(`\b\p{Lu}{4,}\b`)
	multiExclamation    = regexp.MustCompile(`!{2,}`)
)

// ValidationResult reports whether a push text satisfies the channel rules.
type ValidationResult struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues,omitempty"`
}

// ValidatePush checks a push text against the channel rules: length,
// no shouting, direct address, at most one exclamation mark, and a CTA
// from the accepted list.
func ValidatePush(text string) ValidationResult {
	var issues []string

	n := utf8.RuneCountInString(text)
	if n < minPushLength || n > maxPushLength {
		issues = append(issues, fmt.Sprintf("length %d characters (target 180-220)", n))
	}

	if capsRunPattern.MatchString(text) {
		issues = append(issues, "contains a run of 4+ uppercase letters")
	}

	if !secondPersonPattern.MatchString(text) {
		issues = append(issues, "does not address the client directly")
	}

	if strings.Count(text, "!") > 1 {
		issues = append(issues, "too many exclamation marks (max 1)")
	}

	if !containsCTA(text) {
		issues = append(issues, "no call-to-action from the accepted list")
	}

	return ValidationResult{OK: len(issues) == 0, Issues: issues}
}

func containsCTA(text string) bool {
	for _, cta := range CTAByProduct {
		if strings.Contains(text, cta) {
			return true
		}
	}
	return false
}

// Autocorrect applies the safe fixes: collapse repeated exclamation marks,
// de-shout long uppercase words, and trim overlong text at the tail. It does
// not try to invent a missing CTA or address.
func Autocorrect(text string) string {
	t := strings.TrimSpace(text)
	t = multiExclamation.ReplaceAllString(t, "!")
	t = capsWordPattern.ReplaceAllStringFunc(t, func(word string) string {
		lower := strings.ToLower(word)
		r, size := utf8.DecodeRuneInString(lower)
		if size == 0 {
			return lower
		}
		return strings.ToUpper(string(r)) + lower[size:]
	})
	if utf8.RuneCountInString(t) > trimPushTo {
		runes := []rune(t)
		t = strings.TrimRight(string(runes[:trimPushTo]), " ,.;")
	}
	return t
}
