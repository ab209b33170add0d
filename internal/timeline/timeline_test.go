package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWindow(t *testing.T) {
	now := time.Date(2025, 1, 10, 15, 4, 5, 0, time.UTC)
	w := Generate(now)
	require.Equal(t, Size, w.Len())

	want := []string{"2025-01-10", "2025-01-09", "2025-01-08", "2025-01-07", "2025-01-06", "2025-01-05", "2025-01-04"}
	for i, d := range w.Days {
		assert.Equal(t, want[i], d.ISO(), "day %d", i)
		assert.Equal(t, i, d.Offset)
	}

	today := w.Days[0]
	assert.Equal(t, "01/10/2025", today.US())
	assert.Equal(t, "10/01/2025", today.EU())
	assert.Equal(t, "20250110", today.Short())
	assert.Equal(t, "Jan 10", today.Syslog())
	assert.Equal(t, "Jan  6", w.Days[4].Syslog())
}

func TestGenerateCrossesMonthAndYear(t *testing.T) {
	w := Generate(time.Date(2025, 1, 3, 0, 0, 1, 0, time.UTC))
	assert.Equal(t, "2025-01-03", w.Days[0].ISO())
	assert.Equal(t, "2024-12-31", w.Days[3].ISO())
	assert.Equal(t, "Dec 28", w.Days[6].Syslog())
}

func TestGenerateSameDayIsStable(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	morning := Generate(time.Date(2025, 3, 9, 0, 0, 0, 0, loc))
	night := Generate(time.Date(2025, 3, 9, 23, 59, 59, 0, loc))
	assert.Equal(t, morning, night)
}

func TestDayBindings(t *testing.T) {
	d := Generate(time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)).Days[2]
	assert.Equal(t, map[string]any{
		"date":        "2025-01-08",
		"date_us":     "01/08/2025",
		"date_eu":     "08/01/2025",
		"date_short":  "20250108",
		"syslog_date": "Jan  8",
		"day_offset":  2,
	}, d.Bindings())
}

func TestAssignEmpty(t *testing.T) {
	assert.Equal(t, []int{}, Assign(0, Size))
	assert.Equal(t, []int{}, Assign(-3, Size))
}

func TestAssignKnownValues(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, Assign(3, Size))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, Assign(7, Size))
	assert.Equal(t, []int{0}, Assign(1, Size))
}

func TestAssignInvariants(t *testing.T) {
	for count := 1; count <= 200; count++ {
		got := Assign(count, Size)
		require.Len(t, got, count)
		seen := make(map[int]bool, Size)
		for i, idx := range got {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, Size)
			if i > 0 {
				require.GreaterOrEqual(t, idx, got[i-1], "count=%d i=%d", count, i)
			}
			seen[idx] = true
		}
		assert.Equal(t, 0, got[0])
		if count >= Size {
			assert.Len(t, seen, Size, "count=%d must cover the window", count)
		}
	}
}
