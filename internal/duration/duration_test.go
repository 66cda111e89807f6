package duration_test

import (
	"strings"
	"testing"
	"time"

	"github.com/edgard/purgebot/internal/duration"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  time.Duration
		ok    bool
	}{
		{name: "bare integer is days", token: "7", want: 7 * 24 * time.Hour, ok: true},
		{name: "single day component", token: "1d", want: 24 * time.Hour, ok: true},
		{name: "days and hours", token: "1d2h", want: 26 * time.Hour, ok: true},
		{name: "all three units", token: "1d2h30m", want: 26*time.Hour + 30*time.Minute, ok: true},
		{name: "units out of order", token: "2h1d", want: 26 * time.Hour, ok: true},
		{name: "minutes only", token: "90m", want: 90 * time.Minute, ok: true},
		{name: "uppercase accepted", token: "1D2H", want: 26 * time.Hour, ok: true},
		{name: "surrounding whitespace", token: " 3d ", want: 72 * time.Hour, ok: true},
		{name: "empty", token: "", ok: false},
		{name: "zero integer", token: "0", ok: false},
		{name: "zero components", token: "0d0h", ok: false},
		{name: "no digits", token: "d", ok: false},
		{name: "unknown unit", token: "3w", ok: false},
		{name: "repeated unit", token: "1d2d", ok: false},
		{name: "trailing digits without unit", token: "1d2", ok: false},
		{name: "plain text", token: "tomorrow", ok: false},
		{name: "negative integer", token: "-3", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := duration.Parse(tc.token)
			if ok != tc.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.token, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: duration.NoLimit},
		{name: "negative", d: -time.Hour, want: duration.NoLimit},
		{name: "single day", d: 24 * time.Hour, want: "1 day"},
		{name: "days and hours", d: 26 * time.Hour, want: "1 day, 2 hours"},
		{name: "all units", d: 49*time.Hour + 5*time.Minute, want: "2 days, 1 hour, 5 minutes"},
		{name: "minutes only", d: 45 * time.Minute, want: "45 minutes"},
		{name: "sub-minute truncates to no limit", d: 30 * time.Second, want: duration.NoLimit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := duration.Format(tc.d); got != tc.want {
				t.Errorf("Format(%v) = %q, want %q", tc.d, got, tc.want)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token    string
		contains []string
		omits    []string
	}{
		{token: "1d2h", contains: []string{"1 day", "2 hours"}, omits: []string{"minute"}},
		{token: "3", contains: []string{"3 days"}, omits: []string{"hour", "minute"}},
		{token: "2h30m", contains: []string{"2 hours", "30 minutes"}, omits: []string{"day"}},
	}

	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()

			d, ok := duration.Parse(tc.token)
			if !ok {
				t.Fatalf("Parse(%q) unexpectedly failed", tc.token)
			}
			got := duration.Format(d)
			for _, want := range tc.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Format(Parse(%q)) = %q, missing %q", tc.token, got, want)
				}
			}
			for _, bad := range tc.omits {
				if strings.Contains(got, bad) {
					t.Errorf("Format(Parse(%q)) = %q, should omit %q", tc.token, got, bad)
				}
			}
		})
	}
}
