package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOrderNumber(t *testing.T) {
	first, err := NextOrderNumber("", 2025)
	require.NoError(t, err)
	assert.Equal(t, "BM-2025-00001", first)

	second, err := NextOrderNumber(first, 2025)
	require.NoError(t, err)
	assert.Equal(t, "BM-2025-00002", second)
	assert.Greater(t, second, first)

	next, err := NextOrderNumber("BM-2025-00099", 2025)
	require.NoError(t, err)
	assert.Equal(t, "BM-2025-00100", next)

	// new year resets the sequence via the empty "last" lookup
	reset, err := NextOrderNumber("", 2026)
	require.NoError(t, err)
	assert.Equal(t, "BM-2026-00001", reset)
}

func TestNextOrderNumberMalformed(t *testing.T) {
	for _, last := range []string{"BM-2025", "BM-2025-abcde", "2025-00001", "BM-2025-0"} {
		_, err := NextOrderNumber(last, 2025)
		assert.ErrorIs(t, err, ErrMalformedOrderNumber, last)
	}
}
