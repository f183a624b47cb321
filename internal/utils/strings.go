package utils

import (
	"strings"
	"unicode"
)

// NormalizeString trims surrounding whitespace.
func NormalizeString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail lowercases and trims; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a single leading +.
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

func IsValidEmail(email string) bool {
	normalized := NormalizeEmail(email)
	if normalized == "" || strings.ContainsAny(normalized, " \t") {
		return false
	}

	local, domain, ok := strings.Cut(normalized, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	return len(local) > 0 && len(domain) > 2 && strings.Contains(domain, ".")
}

func IsValidPhone(phone string) bool {
	normalized := NormalizePhone(phone)
	digits := strings.TrimPrefix(normalized, "+")
	return len(digits) >= 7
}
