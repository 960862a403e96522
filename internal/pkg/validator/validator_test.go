package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.False(t, IsEmpty("x"))
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:30", "9:30", "23:59", "14:05"}
	for _, s := range valid {
		assert.True(t, IsValidClock(s), s)
	}

	invalid := []string{"24:00", "12:60", "9:5", "noon", "09:30:00", ""}
	for _, s := range invalid {
		assert.False(t, IsValidClock(s), s)
	}
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2025-02-28")
	assert.True(t, ok)

	_, ok = IsValidDate("28-02-2025")
	assert.False(t, ok)

	_, ok = IsValidDate("2025-02-30")
	assert.False(t, ok)
}

func TestValidationErrorsToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "type", Message: "leave type is required"},
		{Field: "session", Message: "must be first_half or second_half"},
	}

	m := errs.ToMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "leave type is required", m["type"])
	assert.Contains(t, errs.Error(), "session:")
}
