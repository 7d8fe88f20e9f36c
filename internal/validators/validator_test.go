package validators

import (
	"net/http"
	"testing"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&models.RegisterRequest{Email: "a@b.io", Password: "longenough", Name: "Ann"}))
	assert.NoError(t, v.Validate(&models.FollowRequest{FollowingID: 7}))

	err := v.Validate(&models.RegisterRequest{Email: "nope", Password: "short", Name: "A"})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)

	fields, ok := he.Message.(FieldErrors)
	require.True(t, ok)
	assert.Contains(t, fields, FieldError{Field: "Email", Tag: "email"})
	assert.Contains(t, fields.Fields(), "Password failed on 'min'")
	assert.Contains(t, fields.Error(), "validation failed: ")

	assert.Error(t, v.Validate(&models.FollowRequest{}))
}
