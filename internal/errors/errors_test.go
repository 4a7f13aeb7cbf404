package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashfall-rpg/gm-api/internal/errors"
)

func TestWrapPreservesCode(t *testing.T) {
	base := errors.NotFound("character not found")
	wrapped := errors.Wrap(base, "loading participant")

	assert.True(t, errors.IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "loading participant")
	assert.Contains(t, wrapped.Error(), "character not found")
}

func TestWrapUncodedDefaultsToInternal(t *testing.T) {
	wrapped := errors.Wrap(fmt.Errorf("connection refused"), "failed to save encounter")

	assert.True(t, errors.IsInternal(wrapped))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, "ignored"))
}

func TestWrapWithCode(t *testing.T) {
	err := errors.WrapWithCode(fmt.Errorf("boom"), errors.CodeUnavailable, "redis down")

	assert.True(t, errors.IsUnavailable(err))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeInternal, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.CodeAlreadyExists, errors.GetCode(errors.AlreadyExists("dup")))
}

func TestValidationBuilder(t *testing.T) {
	t.Run("no errors builds nil", func(t *testing.T) {
		assert.NoError(t, errors.NewValidationBuilder().Build())
	})

	t.Run("collects fields", func(t *testing.T) {
		err := errors.NewValidationBuilder().
			RequiredField("EncounterRepo").
			InvalidField("Port", "must be positive").
			Build()

		assert.Error(t, err)
		assert.True(t, errors.IsInvalidArgument(err))
		assert.Contains(t, err.Error(), "EncounterRepo: is required")
		assert.Contains(t, err.Error(), "Port: is invalid: must be positive")
	})
}
