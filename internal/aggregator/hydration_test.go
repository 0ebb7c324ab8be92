package aggregator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHydrationPercent(t *testing.T) {
	require.Equal(t, 50, HydrationPercent(8, 4))
	require.Equal(t, 100, HydrationPercent(8, 10))
	require.Equal(t, 0, HydrationPercent(0, 5))
	require.Equal(t, 0, HydrationPercent(-3, 5))
	require.Equal(t, 0, HydrationPercent(8, -2))
	require.Equal(t, 38, HydrationPercent(8, 3))
	require.Equal(t, 0, HydrationPercent(math.NaN(), 3))
}

func TestHydrationClamps(t *testing.T) {
	require.Equal(t, 0, ClampHydration(-1))
	require.Equal(t, 15, ClampHydration(16))
	require.Equal(t, 7, ClampHydration(7))

	require.Equal(t, 4, ClampHydrationGoal(3))
	require.Equal(t, 15, ClampHydrationGoal(20))
	require.Equal(t, 9, ClampHydrationGoal(9))
}

func TestTodayHydrationUsesUTCDateKey(t *testing.T) {
	now := time.Date(2025, time.October, 27, 23, 30, 0, 0, time.UTC)
	log := HydrationLog{"2025-10-27": 6, "2025-10-26": 2}

	h := TodayHydration(0, log, now)
	require.Equal(t, Hydration{Goal: 8, Logged: 6, Percent: 75}, h)

	h = TodayHydration(12, nil, now)
	require.Equal(t, Hydration{Goal: 12, Logged: 0, Percent: 0}, h)
}
