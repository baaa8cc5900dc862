package utils

import (
	"fmt"
	"strings"
)

// ValidateApplicationID validates application ID format
func ValidateApplicationID(applicationID string) error {
	if applicationID == "" {
		return fmt.Errorf("application ID cannot be empty")
	}
	if len(applicationID) > 255 {
		return fmt.Errorf("application ID too long (max 255 characters)")
	}
	return nil
}

// ValidateTrackingID validates commission tracking ID format
func ValidateTrackingID(trackingID string) error {
	if trackingID == "" {
		return fmt.Errorf("tracking ID cannot be empty")
	}
	if len(trackingID) > 255 {
		return fmt.Errorf("tracking ID too long (max 255 characters)")
	}
	return nil
}

// ValidatePartnerID validates partner ID format
func ValidatePartnerID(partnerID string) error {
	if partnerID == "" {
		return fmt.Errorf("partner ID cannot be empty")
	}
	if len(partnerID) > 255 {
		return fmt.Errorf("partner ID too long (max 255 characters)")
	}
	return nil
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength validates maximum string length
func ValidateMaxLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLength)
	}
	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
