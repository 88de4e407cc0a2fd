package http

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// domainPattern accepts host names as they appear in rule keys
var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)

const maxDomainLength = 253

var errTooLong = errors.New("input too long")

// validateText checks a shared text field before it is sanitized
func validateText(value, fieldName string, maxLen int) error {
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%w: %s must not exceed %d characters", errTooLong, fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// validateDomain checks a domain path parameter
func validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain is required")
	}
	if len(domain) > maxDomainLength {
		return fmt.Errorf("domain must not exceed %d characters", maxDomainLength)
	}
	if !domainPattern.MatchString(domain) {
		return fmt.Errorf("domain contains invalid characters (only letters, digits, dots and hyphens allowed)")
	}
	return nil
}
