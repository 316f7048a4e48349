package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Label(t *testing.T) {
	end := time.Date(2025, 5, 8, 15, 30, 0, 0, time.UTC)
	w := NewWindow(end, 7)

	assert.Equal(t, "2025-05-01_to_2025-05-08", w.Label())
	assert.Equal(t, 7, w.Days())
	assert.Equal(t, Period{Start: "2025-05-01", End: "2025-05-08", Days: 7}, w.Period())
}

func TestWindow_LabelIsStableWithinADay(t *testing.T) {
	morning := NewWindow(time.Date(2025, 5, 8, 0, 5, 0, 0, time.UTC), 30)
	evening := NewWindow(time.Date(2025, 5, 8, 23, 55, 0, 0, time.UTC), 30)

	assert.Equal(t, []byte(morning.Label()), []byte(evening.Label()))
}

func TestTrailingWindow_UsesLocationCalendar(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	now := time.Date(2025, 5, 7, 20, 0, 0, 0, time.UTC) // 2025-05-08 05:00 JST

	assert.Equal(t, "2025-04-30_to_2025-05-07", TrailingWindow(now, 7, time.UTC).Label())
	assert.Equal(t, "2025-05-01_to_2025-05-08", TrailingWindow(now, 7, jst).Label())
	assert.Equal(t, "2025-04-30_to_2025-05-07", TrailingWindow(now, 7, nil).Label())
}

func TestNewWindow_NegativeDaysClamped(t *testing.T) {
	end := time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC)
	w := NewWindow(end, -3)
	assert.False(t, w.Start.After(w.End))
	assert.Equal(t, "2025-05-08_to_2025-05-08", w.Label())
}

func TestParseLabel(t *testing.T) {
	w, err := ParseLabel("2025-05-01_to_2025-05-08")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01_to_2025-05-08", w.Label())
	assert.Equal(t, 7, w.Days())

	_, err = ParseLabel("2025-05-08_to_2025-05-01")
	assert.Error(t, err)

	_, err = ParseLabel("raw")
	assert.Error(t, err)

	_, err = ParseLabel("2025-13-01_to_2025-13-08")
	assert.Error(t, err)
}

func TestIsLabel(t *testing.T) {
	assert.True(t, IsLabel("2025-05-01_to_2025-05-08"))
	assert.False(t, IsLabel("x_to_y"))
	assert.False(t, IsLabel("2025-05-01_to_2025-05-08-old"))
}
