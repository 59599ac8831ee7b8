package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusyIntervalJSONUsesDateOnly(t *testing.T) {
	b := BusyInterval{
		Start:  Day(2025, time.July, 1),
		End:    Day(2025, time.July, 5),
		Label:  "Not available",
		Source: "Airbnb",
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-07-01","end":"2025-07-05","label":"Not available","source":"Airbnb"}`, string(data))

	var back BusyInterval
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, b, back)
}

func TestBusyIntervalUnmarshalRejectsBadDates(t *testing.T) {
	var b BusyInterval
	err := json.Unmarshal([]byte(`{"start":"July 1st","end":"2025-07-05"}`), &b)
	assert.Error(t, err)
}

func TestBusyIntervalContains(t *testing.T) {
	b := BusyInterval{Start: Day(2025, time.July, 1), End: Day(2025, time.July, 5)}

	assert.True(t, b.Contains(Day(2025, time.July, 1)))
	assert.True(t, b.Contains(Day(2025, time.July, 5)))
	assert.True(t, b.Contains(time.Date(2025, time.July, 3, 18, 30, 0, 0, time.UTC)))
	assert.False(t, b.Contains(Day(2025, time.June, 30)))
	assert.False(t, b.Contains(Day(2025, time.July, 6)))
}

func TestBusyIntervalNights(t *testing.T) {
	assert.Equal(t, 1, BusyInterval{Start: Day(2025, time.July, 1), End: Day(2025, time.July, 1)}.Nights())
	assert.Equal(t, 5, BusyInterval{Start: Day(2025, time.July, 1), End: Day(2025, time.July, 5)}.Nights())
}
