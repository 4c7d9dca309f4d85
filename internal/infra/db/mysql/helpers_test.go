package mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpertiseAreasRoundTrip(t *testing.T) {
	raw, err := encodeAreas(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	raw, err = encodeAreas([]string{"RPA", "LLM \"agents\""})
	require.NoError(t, err)
	got, err := decodeAreas([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"RPA", "LLM \"agents\""}, got)

	got, err = decodeAreas(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = decodeAreas([]byte("not json"))
	assert.Error(t, err)
}

func TestNullIfEmpty(t *testing.T) {
	assert.False(t, nullIfEmpty("  ").Valid)
	assert.Equal(t, "x", nullIfEmpty("x").String)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 100))
	assert.Equal(t, 100, clampLimit(1000, 20, 100))
	assert.Equal(t, 7, clampLimit(7, 20, 100))
}

func TestStatements(t *testing.T) {
	stmts := Statements()
	require.Len(t, stmts, 3)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
	}
}
