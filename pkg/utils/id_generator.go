package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateID generates a new UUID for generic identifiers
func GenerateID() string {
	return uuid.New().String()
}

// GenerateApplicationID generates a unique application ID
func GenerateApplicationID() string {
	return "APP-" + uuid.New().String()
}

// GenerateHistoryID generates a unique stage history entry ID
func GenerateHistoryID() string {
	return "HIST-" + uuid.New().String()
}

// GenerateDocumentID generates a unique document ID
func GenerateDocumentID() string {
	return "DOC-" + uuid.New().String()
}

// GenerateCommissionID generates a unique commission tracking ID
func GenerateCommissionID() string {
	return "COM-" + uuid.New().String()
}

// GenerateAuditID generates a unique audit entry ID
func GenerateAuditID() string {
	return "AUDIT-" + uuid.New().String()
}

// GenerateTrackingNumber generates a human-readable tracking number for an
// application, e.g. EDU-20260828-4F7K2Q. Uniqueness is enforced by the
// database column, not by this generator.
func GenerateTrackingNumber() string {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("EDU-%s-%s", time.Now().UTC().Format("20060102"), string(suffix))
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsValidPrefixedID checks whether an ID carries the expected prefix followed
// by a valid UUID, e.g. IsValidPrefixedID("APP-...", "APP-").
func IsValidPrefixedID(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	return IsValidUUID(strings.TrimPrefix(id, prefix))
}
