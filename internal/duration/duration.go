// Package duration parses and formats the human-entered max-age tokens
// accepted by the purge command (e.g. "7", "1d12h", "90m").
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// NoLimit is the display text for an absent or zero max age.
const NoLimit = "no limit"

var unitDurations = map[byte]time.Duration{
	'd': 24 * time.Hour,
	'h': time.Hour,
	'm': time.Minute,
}

// Parse converts a max-age token into a duration. A bare integer is read as
// whole days; otherwise the token is a sequence of <n>d / <n>h / <n>m
// components in any order, each unit at most once. Returns ok=false for an
// empty token, a token with no recognizable component, a repeated unit, or a
// zero total.
func Parse(token string) (time.Duration, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0, false
	}

	if days, err := strconv.Atoi(token); err == nil {
		if days <= 0 {
			return 0, false
		}
		return time.Duration(days) * 24 * time.Hour, true
	}

	var total time.Duration
	seen := map[byte]bool{}
	i := 0
	for i < len(token) {
		start := i
		for i < len(token) && unicode.IsDigit(rune(token[i])) {
			i++
		}
		if start == i || i == len(token) {
			return 0, false
		}
		unit := token[i]
		d, known := unitDurations[unit]
		if !known || seen[unit] {
			return 0, false
		}
		seen[unit] = true
		n, err := strconv.Atoi(token[start:i])
		if err != nil {
			return 0, false
		}
		total += time.Duration(n) * d
		i++
	}

	if total <= 0 {
		return 0, false
	}
	return total, true
}

// Format renders a duration as its nonzero day/hour/minute components joined
// with commas ("1 day, 2 hours"). Zero or negative durations render as the
// NoLimit sentinel.
func Format(d time.Duration) string {
	if d <= 0 {
		return NoLimit
	}

	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 {
		return NoLimit
	}
	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
