package validator_test

import (
	"fmt"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lny-platform/product-catalog/pkg/validator"
)

type color string

func (c color) Validate() error {
	switch c {
	case "red", "green":
		return nil
	}
	return fmt.Errorf("unknown color: %s", c)
}

type testPayload struct {
	Name  string   `validate:"required,notblank,max=5"`
	Price *float64 `validate:"omitnil,gte=0"`
	Color color    `validate:"omitempty,enum"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	price := func(f float64) *float64 { return &f }

	t.Run("Should accept a valid struct", func(t *testing.T) {
		err := v.Validate(testPayload{Name: "Lamp", Price: price(1), Color: "red"})
		assert.NoError(t, err)
	})

	t.Run("Should reject a blank string with notblank", func(t *testing.T) {
		err := v.Validate(testPayload{Name: "   "})
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))
	})

	t.Run("Should skip nil pointers with omitnil but check set ones", func(t *testing.T) {
		assert.NoError(t, v.Validate(testPayload{Name: "Lamp"}))
		assert.Error(t, v.Validate(testPayload{Name: "Lamp", Price: price(-1)}))
	})

	t.Run("Should reject values outside the enum", func(t *testing.T) {
		err := v.Validate(testPayload{Name: "Lamp", Color: "blue"})
		require.Error(t, err)

		var verrs govalidator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "enum", verrs[0].Tag())
	})

	t.Run("Should report every failed rule", func(t *testing.T) {
		err := v.Validate(testPayload{Name: "", Price: price(-1), Color: "blue"})
		require.Error(t, err)

		var verrs govalidator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 3)
	})
}

func TestValidationErrorMessage(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	err = v.Validate(testPayload{Name: "too long name"})
	require.Error(t, err)

	var verrs govalidator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "must be at most 5", validator.ValidationErrorMessage(verrs[0]))
}
