package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WithDetailsDoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrValidationFailed.WithDetails(map[string]interface{}{"name": "Area name is required"})

	assert.Equal(t, "Area name is required", withDetails.Details["name"])
	assert.Empty(t, ErrValidationFailed.Details)
	assert.Equal(t, ErrValidationFailed.StatusCode, withDetails.StatusCode)
}

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("compute: %w", ErrRouteUnavailable.WithDetails(map[string]interface{}{"status": 502}))

	assert.True(t, stderrors.Is(wrapped, ErrRouteUnavailable))
	assert.False(t, stderrors.Is(wrapped, ErrAreaNotFound))
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "AREA_NOT_FOUND: Farm area not found", ErrAreaNotFound.Error())
}
