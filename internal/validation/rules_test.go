package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/runavault/runavault/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("NilReturnsNil", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("WrapsAsInvalidInput", func(t *testing.T) {
		err := WrapValidationError(apperrors.New("site: must not be blank"))
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "site: must not be blank")
	})
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email.Validate("alice@example.com"))
	assert.Error(t, Email.Validate("not-an-email"))
	assert.Error(t, Email.Validate("missing@tld"))
}

func TestGroupName(t *testing.T) {
	assert.NoError(t, GroupName.Validate("Engineering"))
	assert.NoError(t, GroupName.Validate("team-42_b"))
	assert.Error(t, GroupName.Validate("has space"))
	assert.Error(t, GroupName.Validate("naughty#group"))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("value"))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("trimmed"))
	assert.Error(t, NoWhitespace.Validate(" leading"))
	assert.Error(t, NoWhitespace.Validate("trailing "))
}

