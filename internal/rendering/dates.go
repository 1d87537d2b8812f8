package rendering

import (
	"strconv"
	"strings"
)

// PresentLabel is shown in place of an end date for ongoing entries.
const PresentLabel = "Present"

var monthAbbreviations = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// FormatDate turns "YYYY-MM" into "Jan 2020". Any other input is returned unchanged.
func FormatDate(value string) string {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return value
	}
	year, month := parts[0], parts[1]
	if len(year) != 4 || !allDigits(year) {
		return value
	}
	if len(month) == 0 || len(month) > 2 || !allDigits(month) {
		return value
	}
	index, err := strconv.Atoi(month)
	if err != nil || index < 1 || index > 12 {
		return value
	}
	return monthAbbreviations[index-1] + " " + year
}

// DateRange formats a start/end pair. An ongoing entry, or one with no end
// date, ends at "Present"; an empty start is left blank.
func DateRange(start, end string, current bool) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" && !current {
		return ""
	}

	last := PresentLabel
	if !current && end != "" {
		last = FormatDate(end)
	}
	if start == "" {
		return last
	}
	return FormatDate(start) + " - " + last
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
