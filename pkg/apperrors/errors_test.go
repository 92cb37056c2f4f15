package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name   string
		err    *Error
		status int
		code   Code
	}{
		{"validation", Validation("bad input", cause), http.StatusBadRequest, CodeValidation},
		{"not found", NotFound("missing", cause), http.StatusNotFound, CodeNotFound},
		{"timeout", Timeout(cause), http.StatusGatewayTimeout, CodeTimeout},
		{"too many", TooManyRequests(), http.StatusTooManyRequests, CodeTooMany},
		{"internal", Internal(cause), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.Code())
			assert.NotEmpty(t, tt.err.Message())
		})
	}
}

func TestInternalMessageOmitsCause(t *testing.T) {
	err := Internal(errors.New("pq: password authentication failed"))
	assert.Equal(t, "Internal server error", err.Message())
	assert.Contains(t, err.Error(), "password authentication failed")
}

func TestWithFieldsCopies(t *testing.T) {
	base := Validation("validation failed", nil)
	withFields := base.WithFields(map[string]string{"email": "is required"})

	assert.Empty(t, base.Fields())
	assert.Equal(t, "is required", withFields.Fields()["email"])
}

func TestAsFindsWrappedError(t *testing.T) {
	cause := errors.New("root")
	wrapped := fmt.Errorf("handler: %w", NotFound("missing", cause))

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, got.Code())
	assert.ErrorIs(t, wrapped, cause)

	_, ok = As(cause)
	assert.False(t, ok)
}
