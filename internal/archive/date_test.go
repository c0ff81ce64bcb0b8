package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCutoffDate(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		days  int
		want  time.Time
	}{
		{
			name:  "thirty days",
			today: time.Date(2024, time.June, 15, 18, 45, 0, 0, time.UTC),
			days:  30,
			want:  time.Date(2024, time.May, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "zero days keeps today",
			today: time.Date(2024, time.June, 15, 0, 0, 1, 0, time.UTC),
			days:  0,
			want:  time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "across leap day",
			today: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
			days:  1,
			want:  time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "across year",
			today: time.Date(2025, time.January, 3, 12, 0, 0, 0, time.UTC),
			days:  365,
			want:  time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "local calendar date is used",
			today: time.Date(2024, time.June, 15, 23, 30, 0, 0, time.FixedZone("UTC-10", -10*3600)),
			days:  1,
			want:  time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CutoffDate(tt.today, tt.days))
		})
	}
}

func TestCutoffDateHasNoTimeOfDay(t *testing.T) {
	today := time.Date(2024, time.June, 15, 13, 14, 15, 16, time.UTC)
	for days := 0; days < 800; days += 7 {
		got := CutoffDate(today, days)
		assert.Equal(t, 0, got.Hour()+got.Minute()+got.Second()+got.Nanosecond())
		assert.Equal(t, days, int(today.Sub(got).Hours()/24), "days=%d", days)
	}
}

func TestFormatSearchDate(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "5-Mar-2024"},
		{time.Date(2024, time.November, 23, 0, 0, 0, 0, time.UTC), "23-Nov-2024"},
		{time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), "1-Jan-2023"},
		{time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC), "31-Dec-1999"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSearchDate(tt.date))
	}
}

func TestFormatSearchDateMonths(t *testing.T) {
	months := []string{
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}
	for i, abbr := range months {
		date := time.Date(2024, time.Month(i+1), 9, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "9-"+abbr+"-2024", FormatSearchDate(date))
	}
}

func TestSearchCriteria(t *testing.T) {
	cutoff := CutoffDate(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), 30)
	assert.Equal(t, "BEFORE 16-May-2024", SearchCriteria(cutoff, false))
	assert.Equal(t, "BEFORE 16-May-2024 UNDELETED", SearchCriteria(cutoff, true))
}
