package models

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edupath/application-management-api/internal/workflow"
)

func TestHTTPStatusForErrorCode(t *testing.T) {
	cases := map[string]int{
		ErrCodeBadRequest:                      http.StatusBadRequest,
		ErrCodeValidationError:                 http.StatusBadRequest,
		workflow.ErrCodeMissingReason:          http.StatusBadRequest,
		workflow.ErrCodeDocumentsIncomplete:    http.StatusBadRequest,
		ErrCodeUnauthorized:                    http.StatusUnauthorized,
		ErrCodeForbidden:                       http.StatusForbidden,
		workflow.ErrCodeUnauthorizedActor:      http.StatusForbidden,
		ErrCodeNotFound:                        http.StatusNotFound,
		ErrCodeConflict:                        http.StatusConflict,
		workflow.ErrCodeInvalidTransition:      http.StatusConflict,
		workflow.ErrCodeInvalidCommissionState: http.StatusConflict,
		workflow.ErrCodeConfiguration:          http.StatusInternalServerError,
		ErrCodeDatabaseError:                   http.StatusInternalServerError,
		"SOMETHING_ELSE":                       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatusForErrorCode(code), "code %s", code)
	}

	// The workflow package reuses the NOT_FOUND string, so its lookup
	// failures map to 404 through the same case.
	assert.Equal(t, ErrCodeNotFound, workflow.ErrCodeNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatusForErrorCode(workflow.ErrCodeNotFound))
}

func TestJSONScanAndValue(t *testing.T) {
	var j JSON
	assert.NoError(t, j.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, JSON(`{"a":1}`), j)

	value, err := j.Value()
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), value)

	assert.Error(t, j.Scan([]byte(`not json`)))

	var empty JSON
	assert.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}
