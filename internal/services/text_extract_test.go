package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	got, err := ExtractText([]byte("\ufeff  Zażółć gęślą jaźń \n"))
	require.NoError(t, err)
	assert.Equal(t, "Zażółć gęślą jaźń", got)

	// "café" in Latin-1
	got, err = ExtractText([]byte{'c', 'a', 'f', 0xe9})
	require.NoError(t, err)
	assert.Equal(t, "café", got)

	_, err = ExtractText([]byte(" \n\t "))
	assert.ErrorIs(t, err, errNoReadableText)
}
