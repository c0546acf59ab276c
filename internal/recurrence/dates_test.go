package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-scheduler-backend/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSequence_MonthlySeries(t *testing.T) {
	dates := Sequence(date(2024, 1, 15), date(2024, 4, 15), models.Monthly)

	require.Len(t, dates, 4)
	assert.Equal(t, date(2024, 1, 15), dates[0])
	assert.Equal(t, date(2024, 2, 15), dates[1])
	assert.Equal(t, date(2024, 3, 15), dates[2])
	assert.Equal(t, date(2024, 4, 15), dates[3])
}

func TestSequence_BoundsAndOrdering(t *testing.T) {
	start := date(2024, 1, 7)
	end := date(2025, 1, 7)

	for _, p := range []models.Periodicity{
		models.Daily, models.Weekly, models.Biweekly, models.Monthly,
		models.Bimonthly, models.Quarterly, models.Semiannual, models.Annual,
	} {
		dates := Sequence(start, end, p)
		require.NotEmpty(t, dates, "periodicity %s", p)
		assert.Equal(t, start, dates[0], "periodicity %s", p)
		for i, d := range dates {
			assert.False(t, d.Before(start), "periodicity %s", p)
			assert.False(t, d.After(end), "periodicity %s", p)
			if i > 0 {
				assert.True(t, d.After(dates[i-1]), "periodicity %s not ascending", p)
			}
		}
	}
}

func TestSequence_Deterministic(t *testing.T) {
	first := Sequence(date(2024, 3, 1), date(2026, 3, 1), models.Quarterly)
	second := Sequence(date(2024, 3, 1), date(2026, 3, 1), models.Quarterly)
	assert.Equal(t, first, second)
}

func TestSequence_EndBeforeStart(t *testing.T) {
	assert.Empty(t, Sequence(date(2024, 5, 1), date(2024, 4, 30), models.Daily))
}

func TestSequence_SingleDateWhenEndEqualsStart(t *testing.T) {
	dates := Sequence(date(2024, 2, 29), date(2024, 2, 29), models.Annual)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2024, 2, 29), dates[0])
}

func TestSequence_PreservesDayOfMonth(t *testing.T) {
	dates := Sequence(date(2024, 1, 30), date(2024, 5, 30), models.Monthly)

	// February has no 30th; time.AddDate normalizes that step, every other
	// month keeps the anchor's day because steps are taken from the start.
	require.Len(t, dates, 5)
	assert.Equal(t, date(2024, 1, 30), dates[0])
	assert.Equal(t, date(2024, 3, 1), dates[1]) // 2024-02-30 normalized
	assert.Equal(t, date(2024, 3, 30), dates[2])
	assert.Equal(t, date(2024, 4, 30), dates[3])
	assert.Equal(t, date(2024, 5, 30), dates[4])
}

func TestSequence_UnknownPeriodicityFallsBackToMonthly(t *testing.T) {
	unknown := Sequence(date(2024, 1, 15), date(2024, 4, 15), models.Periodicity("fortnightly"))
	monthly := Sequence(date(2024, 1, 15), date(2024, 4, 15), models.Monthly)
	assert.Equal(t, monthly, unknown)
}

func TestNext_SingleStep(t *testing.T) {
	assert.Equal(t, date(2024, 1, 16), Next(date(2024, 1, 15), models.Daily))
	assert.Equal(t, date(2024, 1, 29), Next(date(2024, 1, 15), models.Biweekly))
	assert.Equal(t, date(2024, 7, 15), Next(date(2024, 1, 15), models.Semiannual))
	assert.Equal(t, date(2025, 1, 15), Next(date(2024, 1, 15), models.Annual))
}

func TestNth_MultiplePeriods(t *testing.T) {
	assert.Equal(t, date(2024, 1, 15), Nth(date(2024, 1, 15), models.Weekly, 0))
	assert.Equal(t, date(2024, 2, 5), Nth(date(2024, 1, 15), models.Weekly, 3))
	assert.Equal(t, date(2024, 7, 15), Nth(date(2024, 1, 15), models.Bimonthly, 3))
}

func TestDay_NormalizesToMidnightUTC(t *testing.T) {
	ts := time.Date(2024, 6, 3, 17, 45, 12, 0, time.UTC)
	assert.Equal(t, date(2024, 6, 3), Day(ts))
}
