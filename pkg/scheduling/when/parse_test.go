package when

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	tferrors "github.com/vnykmshr/timeflow/pkg/common/errors"
)

func TestParse(t *testing.T) {
	// Saturday 2024-06-01 12:00:00 UTC
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want Descriptor
	}{
		{"milliseconds", "1500ms", AfterMs(1500)},
		{"seconds", "5s", AfterMs(5000)},
		{"compound duration", "2h30m", AfterMs(9_000_000)},
		{"surrounding space", "  5s ", AfterMs(5000)},
		{"every", "@every 90s", AfterMs(90_000)},
		{"every truncates to seconds", "@every 1500ms", AfterMs(1000)},
		{"hour and minute", "14:30", Daily(14, 30, 0)},
		{"hour minute second", "07:05:09", Daily(7, 5, 9)},
		{"single digit hour", "9:05", Daily(9, 5, 0)},
		{"rfc3339", "2025-01-02T15:04:05Z", At(time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC))},
		{"daily macro", "@daily", At(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))},
		{"hourly macro", "@hourly", At(time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC))},
		{"five field cron", "30 9 * * 1-5", At(time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC))},
		{"six field cron", "15 30 9 * * *", At(time.Date(2024, 6, 2, 9, 30, 15, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in, now)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParse_ResolvesThroughAlgorithm(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	d := MustParse("11:00", now)
	if got := ResolveAt(now, d); got != int64(23*time.Hour/time.Millisecond) {
		t.Errorf("passed time of day resolved to %d, want 23h", got)
	}

	d = MustParse("@hourly", now)
	if got := ResolveAt(now, d); got != int64(time.Hour/time.Millisecond) {
		t.Errorf("@hourly resolved to %d, want 1h", got)
	}
}

func TestParse_Errors(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, in := range []string{"", "   ", "soon", "25:00", "5", "@every nope", "0 0 30 2 *"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in, now)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", in)
			}
			if !tferrors.IsValidationError(err) {
				t.Errorf("Parse(%q) error type %T, want ValidationError", in, err)
			}
			if !errors.Is(err, tferrors.ErrInvalidConfiguration) {
				t.Errorf("Parse(%q) error should wrap ErrInvalidConfiguration", in)
			}
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("not a time", time.Now())
}
