package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/passvault/passvault/internal/common"
)

// PasswordMinLength is the minimum accepted password length.
const PasswordMinLength = 12

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// ValidatePassword checks a candidate password against the policy: minimum
// length, all four character classes, and no occurrence of the username in
// any letter case. It returns nil when the password is acceptable, or a
// PolicyError carrying every violation so the client can show the full
// list at once.
func ValidatePassword(password, username string) *common.PolicyError {
	var violations []string

	if len(password) < PasswordMinLength {
		violations = append(violations, fmt.Sprintf("Password must be at least %d characters", PasswordMinLength))
	}
	if !containsClass(password, unicode.IsUpper) {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !containsClass(password, unicode.IsLower) {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !containsClass(password, unicode.IsDigit) {
		violations = append(violations, "Password must contain at least one number")
	}
	if !strings.ContainsAny(password, specialChars) {
		violations = append(violations, "Password must contain at least one special character")
	}
	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		violations = append(violations, "Password must not contain the username")
	}

	if len(violations) > 0 {
		return &common.PolicyError{Violations: violations}
	}
	return nil
}

func containsClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}
