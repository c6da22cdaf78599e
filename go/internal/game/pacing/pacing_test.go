package pacing

import (
	"errors"
	"testing"
	"time"
)

func TestNext(t *testing.T) {
	c := DefaultConfig()

	tests := []struct {
		name    string
		current int
		points  int
		want    int
	}{
		{name: "correct answer asks more often", current: 5000, points: 2, want: 4900},
		{name: "wrong answer asks less often", current: 5000, points: -2, want: 5100},
		{name: "server error asks less often", current: 5000, points: -10, want: 5100},
		{name: "zero points unchanged", current: 5000, points: 0, want: 5000},
		{name: "clamped at min", current: MinInterval, points: 20, want: MinInterval},
		{name: "clamped near min", current: MinInterval + 50, points: 20, want: MinInterval},
		{name: "clamped at max", current: MaxInterval, points: -15, want: MaxInterval},
		{name: "clamped near max", current: MaxInterval - 50, points: -15, want: MaxInterval},
		{name: "out of range current is clamped first", current: 50000, points: 5, want: MaxInterval - Step},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Next(tt.current, tt.points); got != tt.want {
				t.Errorf("Next(%d, %d) = %d, want %d", tt.current, tt.points, got, tt.want)
			}
		})
	}
}

func TestConsecutiveOutcomes(t *testing.T) {
	c := DefaultConfig()
	for n := 0; n <= 100; n++ {
		up, down, flat := c.Default, c.Default, c.Default
		for i := 0; i < n; i++ {
			up = c.Next(up, 5)
			down = c.Next(down, -5)
			flat = c.Next(flat, 0)
		}
		if want := max(c.Min, c.Default-n*c.Step); up != want {
			t.Errorf("%d correct answers: got %d, want %d", n, up, want)
		}
		if want := min(c.Max, c.Default+n*c.Step); down != want {
			t.Errorf("%d wrong answers: got %d, want %d", n, down, want)
		}
		if flat != c.Default {
			t.Errorf("%d zero-point answers changed the interval to %d", n, flat)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := []Config{
		{Default: 5000, Min: 0, Max: 20000, Step: 100},
		{Default: 1000, Min: 2000, Max: 20000, Step: 100},
		{Default: 30000, Min: 2000, Max: 20000, Step: 100},
		{Default: 5000, Min: 2000, Max: 20000, Step: 0},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v: expected ErrInvalidConfig, got %v", c, err)
		}
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(4900); got != 4900*time.Millisecond {
		t.Errorf("got %v", got)
	}
}
