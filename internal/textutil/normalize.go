package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	readOnlyTail  = regexp.MustCompile(`(?i)\s*\(read only\)\s*$`)
	durationTail  = regexp.MustCompile(`\s*\((?:\d{1,2}:)?\d{1,2}:\d{2}\)\s*$`)
	numericIDTail = regexp.MustCompile(`\s*-\s*\d{4,}\s*$`)
)

// StripNoiseTail removes trailing noise markers from a title: a "(read only)"
// flag, then a clock-style duration like "(12:34)" or "(1:02:03)", then a
// numeric ID suffix like "- 123456". Markers stack, so the strips repeat
// until the string stops changing: "Intro Lecture (Read Only) (12:34) - 123456"
// sheds one marker per pass.
func StripNoiseTail(title string) string {
	s := strings.TrimSpace(title)
	for {
		prev := s
		s = readOnlyTail.ReplaceAllString(s, "")
		s = durationTail.ReplaceAllString(s, "")
		s = numericIDTail.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize maps a raw title to its canonical matching key: noise tails
// stripped, combining marks folded away, lowercased, every non-alphanumeric
// character replaced with a space, and whitespace collapsed. The result is
// stable under repeated application and never shown to end users.
func Normalize(title string) string {
	s := StripNoiseTail(title)
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CleanHeaderID strips the trailing numeric identifier Canvas appends to
// assignment headers, in either export style: "Essay 1 (1234567)" or
// "Essay 1 - 1234567". Identifiers shorter than four digits are kept, since
// short trailing numbers are usually part of the real name.
func CleanHeaderID(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, ")") {
		if i := strings.LastIndex(s, "("); i >= 0 {
			if digits := s[i+1 : len(s)-1]; len(digits) >= 4 && allDigits(digits) {
				s = strings.TrimRight(s[:i], " ")
			}
		}
	}
	if i := strings.LastIndex(s, "-"); i >= 0 {
		if right := strings.TrimSpace(s[i+1:]); len(right) >= 4 && allDigits(right) {
			s = strings.TrimSpace(s[:i])
		}
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
