package resolution

import (
	"strings"
	"unicode"
)

// Single characters that are real skill names and survive the length gate.
var singleCharWhitelist = map[string]struct{}{
	"C": {},
	"R": {},
	"V": {},
}

// CleanAndValidate normalizes a raw token and reports whether it is
// plausibly a skill name. Rejected tokens never reach a lookup layer,
// so fragments produced by delimiter splitting stop here.
func CleanAndValidate(raw string) (string, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return "", false
	}
	if !containsAlnum(s) {
		return "", false
	}

	s = strings.TrimSpace(stripBoundaryPunct(s))
	if s == "" {
		return "", false
	}
	if digitsOnly(s) {
		return "", false
	}
	if len([]rune(s)) < 2 {
		if _, ok := singleCharWhitelist[strings.ToUpper(s)]; !ok {
			return "", false
		}
	}
	return s, true
}

// stripBoundaryPunct removes punctuation from both ends of the token while
// keeping technical forms intact: trailing "+" and "#" (C++, C#), a leading
// "." followed by an alphanumeric (.NET). Interior punctuation (Node.js,
// "(AKS") is untouched.
func stripBoundaryPunct(s string) string {
	runes := []rune(s)

	start := 0
	for start < len(runes) {
		r := runes[start]
		if isAlnum(r) {
			break
		}
		if r == '.' && start+1 < len(runes) && isAlnum(runes[start+1]) {
			break
		}
		start++
	}

	end := len(runes)
	for end > start {
		r := runes[end-1]
		if isAlnum(r) || r == '+' || r == '#' {
			break
		}
		end--
	}

	return string(runes[start:end])
}

func containsAlnum(s string) bool {
	for _, r := range s {
		if isAlnum(r) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
