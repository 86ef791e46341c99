package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	conflict := NewConflict("busy", nil)
	wrapped := fmt.Errorf("submit: %w", conflict)
	assert.Same(t, conflict, ToDomainError(wrapped))

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"fiber error", fiber.ErrNotFound, "HTTP_ERROR", http.StatusNotFound},
		{"no rows", fmt.Errorf("find: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"plain error", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, "internal server error", internal.Message)
	assert.EqualError(t, internal.Unwrap(), "boom")
}

func TestGatewayErrorKeepsMessage(t *testing.T) {
	de := ToDomainError(NewGatewayError(errors.New("permission denied for table refunds")))
	assert.Equal(t, "GATEWAY_ERROR", de.Code)
	assert.Equal(t, "permission denied for table refunds", de.Message)
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
}
