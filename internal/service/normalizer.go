package service

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonDigitRegex   = regexp.MustCompile(`\D+`)
	monthRegex      = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	emailRegex      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// normalizeEmail lowercases and trims the provided email.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// normalizePhone removes non-digit characters to produce a canonical representation.
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = nonDigitRegex.ReplaceAllString(phone, "")
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "00") {
		phone = phone[2:]
	}
	// assume E.164 with missing plus
	return "+" + phone
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func validMonth(month string) bool {
	return monthRegex.MatchString(month)
}
