package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateFlexible(t *testing.T) {
	want := time.Date(2024, time.July, 1, 10, 30, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-07-01 10:30:00",
		"2024-07-01T10:30:00Z",
		"2024-07-01T10:30:00",
		"2024-07-01 10:30",
	} {
		got, err := ParseDateFlexible(in)
		require.NoErrorf(t, err, "ParseDateFlexible(%q)", in)
		assert.Truef(t, want.Equal(got), "ParseDateFlexible(%q) = %s", in, got)
	}

	got, err := ParseDateFlexible("2024-07-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateFlexibleEmpty(t *testing.T) {
	got, err := ParseDateFlexible("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestParseDateFlexibleInLocation(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	got, err := ParseDateFlexibleIn("2024-07-01 10:30:00", wib)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, wib, got.Location())
}

func TestParseDateFlexibleInvalid(t *testing.T) {
	_, err := ParseDateFlexible("yesterday")
	assert.Error(t, err)
}
