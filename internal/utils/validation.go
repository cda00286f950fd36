package utils

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	nonDigits   = regexp.MustCompile(`\D`)
	nonAlnum    = regexp.MustCompile(`[^A-Za-z0-9]`)
	inviteShape = regexp.MustCompile(`^[A-Z0-9]{6,20}$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}

	return nil
}

// ValidateRequired validates that a string is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// NormalizeTwoFactorCode strips everything but digits and requires exactly six.
func NormalizeTwoFactorCode(code string) (string, error) {
	digits := nonDigits.ReplaceAllString(code, "")
	if len(digits) != 6 {
		return "", fmt.Errorf("two-factor code must have 6 digits")
	}
	return digits, nil
}

// NormalizeInviteCode upper-cases a group code and drops non-alphanumerics.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(nonAlnum.ReplaceAllString(code, ""))
}

// ValidateInviteCode checks a normalized code has the accepted shape.
func ValidateInviteCode(code string) error {
	if !inviteShape.MatchString(code) {
		return fmt.Errorf("invite code must have 6 to 20 letters or digits")
	}
	return nil
}

// NormalizePhone reduces a Brazilian phone to "+55" plus digits. An empty
// input or a bare country prefix yields "".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || phone == "+55" {
		return ""
	}
	digits := nonDigits.ReplaceAllString(strings.ReplaceAll(phone, "+55", ""), "")
	if digits == "" {
		return ""
	}
	return "+55" + digits
}
