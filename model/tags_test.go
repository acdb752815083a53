package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTag(t *testing.T) {
	assert.True(t, IsValidTag("Physics"))
	assert.True(t, IsValidTag("Computer Science"))
	assert.False(t, IsValidTag("physics"))
	assert.False(t, IsValidTag("Astrology"))
	assert.False(t, IsValidTag(""))
}

func TestValidateTags(t *testing.T) {
	_, ok := ValidateTags(nil)
	assert.True(t, ok)

	_, ok = ValidateTags([]string{"Physics", "Art"})
	assert.True(t, ok)

	bad, ok := ValidateTags([]string{"Physics", "Astrology", "Alchemy"})
	assert.False(t, ok)
	assert.Equal(t, "Astrology", bad)
}
