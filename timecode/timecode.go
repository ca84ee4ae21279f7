// Package timecode converts between loop-bound text ("90", "1:30", "1:01:30") and seconds.
package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

// Placeholder is shown in place of an unset loop bound.
const Placeholder = "--:--"

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Parse reads plain seconds, MM:SS or HH:MM:SS.
// Colon-separated components that are empty or non-numeric count as zero.
// Anything else, including the empty string, yields None.
func Parse(text string) mo.Option[float64] {
	text = strings.TrimSpace(text)
	if text == "" {
		return mo.None[float64]()
	}

	if digitsOnly.MatchString(text) {
		n, err := strconv.ParseUint(text, 10, 63)
		if err != nil {
			return mo.None[float64]()
		}
		return mo.Some(float64(n))
	}

	if !strings.Contains(text, ":") {
		return mo.None[float64]()
	}

	parts := strings.Split(text, ":")
	values := make([]float64, len(parts))
	for i, p := range parts {
		values[i] = float64(component(p))
	}

	switch len(values) {
	case 2:
		return mo.Some(values[0]*60 + values[1])
	case 3:
		return mo.Some(values[0]*3600 + values[1]*60 + values[2])
	default:
		return mo.None[float64]()
	}
}

// component parses the leading integer of s the way a lenient parseInt would, returning 0 when there is none.
func component(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Format renders seconds as MM:SS, or HH:MM:SS once an hour is reached.
// Fractions are truncated and negative values clamp to zero.
func Format(seconds float64) string {
	if seconds < 0 || seconds != seconds {
		seconds = 0
	}

	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// Label formats an optional bound, falling back to Placeholder.
func Label(bound mo.Option[float64]) string {
	if v, ok := bound.Get(); ok {
		return Format(v)
	}
	return Placeholder
}
