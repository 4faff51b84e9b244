package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyPeriod(t *testing.T) {
	assert.Equal(t, 24*time.Hour, FrequencyDaily.Period())
	assert.Equal(t, 7*24*time.Hour, FrequencyWeekly.Period())
	assert.Equal(t, 30*24*time.Hour, FrequencyMonthly.Period())
}

func TestFrequencyValid(t *testing.T) {
	assert.True(t, FrequencyDaily.Valid())
	assert.True(t, FrequencyWeekly.Valid())
	assert.True(t, FrequencyMonthly.Valid())
	assert.False(t, AlertFrequency("hourly").Valid())
	assert.False(t, AlertFrequency("").Valid())
}

func TestAlertDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("active and past next_run", func(t *testing.T) {
		alert := Alert{Status: AlertStatusActive, NextRun: &past}
		assert.True(t, alert.Due(now))
	})

	t.Run("next_run in the future", func(t *testing.T) {
		alert := Alert{Status: AlertStatusActive, NextRun: &future}
		assert.False(t, alert.Due(now))
	})

	t.Run("paused", func(t *testing.T) {
		alert := Alert{Status: AlertStatusPaused, NextRun: &past}
		assert.False(t, alert.Due(now))
	})

	t.Run("no next_run", func(t *testing.T) {
		alert := Alert{Status: AlertStatusActive}
		assert.False(t, alert.Due(now))
	})
}
