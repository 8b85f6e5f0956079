package icron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTriggerInfo_Hourly(t *testing.T) {
	ref := time.Date(2026, 3, 10, 14, 20, 0, 0, time.UTC)

	info, err := GetTriggerInfo("0 * * * *", ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), info.Next)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), info.Last)
	assert.Equal(t, 20*time.Minute, info.TimeSinceLast)
	assert.Equal(t, 40*time.Minute, info.TimeUntilNext)
}

func TestGetTriggerInfo_EveryFiveMinutesPicksLatestPrevious(t *testing.T) {
	ref := time.Date(2026, 3, 10, 14, 23, 0, 0, time.UTC)

	info, err := GetTriggerInfo("*/5 * * * *", ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 10, 14, 20, 0, 0, time.UTC), info.Last)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 25, 0, 0, time.UTC), info.Next)
}

func TestGetTriggerInfo_InvalidExpression(t *testing.T) {
	_, err := GetTriggerInfo("not a cron", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}
