package journal

import (
	"testing"
	"time"
)

func TestParsePruneSchedule_Valid(t *testing.T) {
	for _, expr := range []string{"0 * * * *", "*/15 * * * *", "30 2 * * 0"} {
		if _, err := parsePruneSchedule(expr); err != nil {
			t.Errorf("parsePruneSchedule(%q) error = %v", expr, err)
		}
	}
}

func TestParsePruneSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"garbage", "not a cron"},
		{"too few fields", "0 *"},
		{"seconds field", "0 0 * * * *"},
		{"cron_tz prefix", "CRON_TZ=America/New_York 0 * * * *"},
		{"tz prefix", "TZ=UTC 0 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parsePruneSchedule(tt.expr); err == nil {
				t.Errorf("parsePruneSchedule(%q) accepted invalid expression", tt.expr)
			}
		})
	}
}

func TestPruneSchedule_Next(t *testing.T) {
	sched, err := parsePruneSchedule("0 * * * *")
	if err != nil {
		t.Fatalf("parsePruneSchedule() error = %v", err)
	}

	now := time.Date(2025, 3, 10, 14, 20, 0, 0, time.UTC)
	want := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	if next := sched.next(now); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestPruneSchedule_NextNormalizesToUTC(t *testing.T) {
	sched, err := parsePruneSchedule("0 * * * *")
	if err != nil {
		t.Fatalf("parsePruneSchedule() error = %v", err)
	}

	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2025, 3, 10, 14, 20, 0, 0, loc) // 09:20 UTC

	want := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if next := sched.next(now); !next.Equal(want) {
		t.Errorf("next = %v, want %v (schedule evaluated in UTC)", next, want)
	}
}
