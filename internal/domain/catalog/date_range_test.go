package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(day, hour int) *time.Time {
	t := time.Date(1978, time.June, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestDateRangeValidateComparesCalendarDates(t *testing.T) {
	cases := []struct {
		name string
		r    DateRange
		ok   bool
	}{
		{"unbounded", DateRange{}, true},
		{"lower only", DateRange{Lower: at(1, 0)}, true},
		{"next day", DateRange{Lower: at(1, 0), Upper: at(2, 0)}, true},
		{"same day different hours", DateRange{Lower: at(1, 10), Upper: at(1, 12)}, false},
		{"reversed", DateRange{Lower: at(3, 0), Upper: at(2, 0)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.r.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
