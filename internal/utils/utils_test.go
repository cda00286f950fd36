package utils

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("fetch profile: %w", NewAPIError(http.StatusUnauthorized, "Unauthenticated.", ""))
	assert.True(t, IsAuthError(wrapped))
	assert.False(t, IsNotFoundError(wrapped))
	assert.True(t, IsForbiddenError(NewAPIError(http.StatusForbidden, "no", "pending_activation")))
	assert.Equal(t, "pending_activation", ErrorCode(NewAPIError(http.StatusForbidden, "no", "pending_activation")))
	assert.False(t, IsAuthError(fmt.Errorf("dial tcp: timeout")))
}

func TestValidationKind(t *testing.T) {
	assert.True(t, DuplicateEmail.Modal())
	assert.True(t, DuplicateTaxID.Modal())
	assert.False(t, DuplicateOther.Modal())
	assert.False(t, GenericField.Modal())
	assert.Equal(t, "duplicate-tax-id", DuplicateTaxID.String())

	err := fmt.Errorf("register: %w", NewValidationError(DuplicateEmail, "email", "taken"))
	vErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "email", vErr.Field)
}

func TestNormalizeTwoFactorCode(t *testing.T) {
	code, err := NormalizeTwoFactorCode("123 456")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	_, err = NormalizeTwoFactorCode("12345")
	assert.Error(t, err)
}

func TestInviteCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeInviteCode(" abc-123 "))
	assert.NoError(t, ValidateInviteCode("ABC123"))
	assert.Error(t, ValidateInviteCode("AB1"))
	assert.Error(t, ValidateInviteCode("ABCDEFGHIJKLMNOPQRSTU"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "", NormalizePhone("+55"))
	assert.Equal(t, "", NormalizePhone("  "))
	assert.Equal(t, "+5581999998888", NormalizePhone("+55 (81) 99999-8888"))
	assert.Equal(t, "+5581999998888", NormalizePhone("81 99999 8888"))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@x.com"))
	assert.Error(t, ValidateEmail("user"))
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.Error(t, ValidateRequired(" ", "name"))
}
