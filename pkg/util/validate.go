package util

import (
	"regexp"
	"unicode/utf8"
)

var (
	// Mainland mobile numbers: 11 digits, leading 1, second digit 3-9
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IsValidPhone reports whether s is a well-formed mobile number
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsValidEmail reports whether s is a well-formed email address
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidUsername checks the allowed username length (3-20).
// Length counts characters, not bytes, so CJK names measure the same
// way they do in the signup form.
func IsValidUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 3 && n <= 20
}

// IsValidPassword checks the allowed password length (6-20)
func IsValidPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 6 && n <= 20
}
