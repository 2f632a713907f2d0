package format

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgRFPDescription = "Please provide a detailed RFP description (at least 10 characters)"
	msgVendorName     = "Vendor name must be at least 2 characters long"
	msgVendorEmail    = "Please provide a valid email address"
)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidRFPDescription(description string) bool {
	return len([]rune(strings.TrimSpace(description))) >= 10
}

func IsValidVendorName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= 2
}

// ValidateRFP returns the problems with a natural-language RFP prompt, or
// nil when it is acceptable.
func ValidateRFP(prompt string) []string {
	if !IsValidRFPDescription(prompt) {
		return []string{msgRFPDescription}
	}
	return nil
}

func ValidateVendor(name, email string) []string {
	var errs []string
	if !IsValidVendorName(name) {
		errs = append(errs, msgVendorName)
	}
	if !IsValidEmail(email) {
		errs = append(errs, msgVendorEmail)
	}
	return errs
}
