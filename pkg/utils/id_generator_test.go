package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratedIDsCarryTheirPrefix(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateApplicationID(), "APP-"))
	assert.True(t, strings.HasPrefix(GenerateHistoryID(), "HIST-"))
	assert.True(t, strings.HasPrefix(GenerateDocumentID(), "DOC-"))
	assert.True(t, strings.HasPrefix(GenerateCommissionID(), "COM-"))
	assert.True(t, strings.HasPrefix(GenerateAuditID(), "AUDIT-"))
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateApplicationID()
		assert.False(t, seen[id], "duplicate ID generated: %s", id)
		seen[id] = true
	}
}

func TestTrackingNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^EDU-\d{8}-[ABCDEFGHJKMNPQRSTUVWXYZ23456789]{6}$`)
	for i := 0; i < 100; i++ {
		number := GenerateTrackingNumber()
		assert.Regexp(t, pattern, number)
	}
}
