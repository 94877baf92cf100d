package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing_PushEvictsOldest(t *testing.T) {
	t.Parallel()

	ring := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		ring.Push(i)
	}

	require.Equal(t, 3, ring.Len())
	require.Equal(t, 3, ring.Cap())
	require.Equal(t, []int{5, 4, 3}, ring.Items())
	require.Equal(t, []int{3, 4, 5}, ring.ItemsOldestFirst())
}

func TestRing_NeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	ring := NewRing[string](2)
	for i := 0; i < 100; i++ {
		ring.Push("entry")
		require.LessOrEqual(t, ring.Len(), 2)
	}
}

func TestRing_PartiallyFilled(t *testing.T) {
	t.Parallel()

	ring := NewRing[int](10)
	ring.Push(1)
	ring.Push(2)

	require.Equal(t, 2, ring.Len())
	require.Equal(t, []int{2, 1}, ring.Items())
}

func TestRing_Empty(t *testing.T) {
	t.Parallel()

	ring := NewRing[int](4)
	require.Equal(t, 0, ring.Len())
	require.Empty(t, ring.Items())
	require.Empty(t, ring.ItemsOldestFirst())
}
