package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReferenceFormat(t *testing.T) {
	ref := NewReference()

	parts := strings.Split(ref, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "DD", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 6)
	assert.Equal(t, ref, strings.ToUpper(ref))
}

// The generator alone is probabilistic; the bookings table unique
// constraint plus retry makes the system guarantee. This pins the
// generator's collision behavior at a scale retries can absorb.
func TestNewReferenceNoCollisions(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		ref := NewReference()
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s after %d generations", ref, i)
		seen[ref] = struct{}{}
	}
}
