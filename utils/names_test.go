package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTextNormalisesComposedForms(t *testing.T) {
	decomposed := "  Cafe\u0301 "
	cleaned := CleanText(decomposed)
	assert.Equal(t, "Caf\u00e9", cleaned)
	assert.Equal(t, 4, RuneLen(cleaned))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "friday-night-blitz", Slugify("Friday Night Blitz!"))
	assert.Equal(t, "untitled", Slugify("!!!"))
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "ROCK", NormalizeTag("Röck"))
	assert.Equal(t, "AB12", NormalizeTag(" a-b 1_2 "))
	assert.Equal(t, "", NormalizeTag("***"))
}
