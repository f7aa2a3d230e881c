package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarDateUsesLocalDay(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	lateUTC := time.Date(2024, time.March, 31, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), CalendarDate(lateUTC, istanbul))
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), CalendarDate(lateUTC, nil))
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{year: 2024, month: time.February, want: 29},
		{year: 2025, month: time.February, want: 28},
		{year: 2025, month: time.April, want: 30},
		{year: 2025, month: time.December, want: 31},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, daysInMonth(test.year, test.month), "%s %d", test.month, test.year)
	}
}

func TestOneYearAfterClampsLeapDay(t *testing.T) {
	assert.Equal(t, time.Date(2029, time.February, 28, 0, 0, 0, 0, time.UTC), oneYearAfter(time.Date(2028, time.February, 29, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), oneYearAfter(time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)))
}
