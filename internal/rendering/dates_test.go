package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2020-01", "Jan 2020"},
		{"2021-12", "Dec 2021"},
		{"1999-7", "Jul 1999"},
		{"2020-00", "2020-00"},
		{"2020-13", "2020-13"},
		{"2020", "2020"},
		{"", ""},
		{"2020-01-15", "2020-01-15"},
		{"20-01", "20-01"},
		{"abcd-01", "abcd-01"},
		{"2020-ab", "2020-ab"},
		{"2020-", "2020-"},
		{"-01", "-01"},
		{"2020-001", "2020-001"},
		{"Summer 2020", "Summer 2020"},
		{"２０２０-01", "２０２０-01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.input))
		})
	}
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		current bool
		want    string
	}{
		{"closed range", "2020-01", "2021-06", false, "Jan 2020 - Jun 2021"},
		{"current ignores stored end", "2020-01", "2021-06", true, "Jan 2020 - Present"},
		{"empty end means present", "2020-01", "", false, "Jan 2020 - Present"},
		{"empty start is blank", "", "2021-06", false, "Jun 2021"},
		{"empty start and current", "", "", true, "Present"},
		{"nothing at all", "", "", false, ""},
		{"malformed dates pass through", "spring", "fall", false, "spring - fall"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateRange(tt.start, tt.end, tt.current))
		})
	}
}
