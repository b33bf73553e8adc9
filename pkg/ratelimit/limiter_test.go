package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestShouldRun(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	delay := 3 * time.Hour

	t.Run("NoPriorRun", func(t *testing.T) {
		d := ShouldRun(nil, delay, now)
		if !d.Allowed {
			t.Error("Expected first run to be allowed")
		}
	})

	t.Run("ExactlyAtBoundary", func(t *testing.T) {
		last := now.Add(-delay)
		d := ShouldRun(&last, delay, now)
		if !d.Allowed {
			t.Error("Expected run at the exact boundary to be allowed")
		}
	})

	t.Run("JustBeforeBoundary", func(t *testing.T) {
		last := now.Add(-delay + time.Second)
		d := ShouldRun(&last, delay, now)
		if d.Allowed {
			t.Error("Expected run before the boundary to be denied")
		}
		if d.Remaining != time.Second {
			t.Errorf("Expected 1s remaining, got %v", d.Remaining)
		}
		if want := last.Add(delay); !d.NextEligibleAt.Equal(want) {
			t.Errorf("Expected next eligible at %v, got %v", want, d.NextEligibleAt)
		}
	})

	t.Run("LongAfterBoundary", func(t *testing.T) {
		last := now.Add(-24 * time.Hour)
		d := ShouldRun(&last, delay, now)
		if !d.Allowed {
			t.Error("Expected run long after the boundary to be allowed")
		}
	})

	t.Run("ZeroDelay", func(t *testing.T) {
		last := now
		d := ShouldRun(&last, 0, now)
		if !d.Allowed {
			t.Error("Expected zero delay to always admit")
		}
	})
}

func TestJitter(t *testing.T) {
	base := 10 * time.Second

	t.Run("WithinBand", func(t *testing.T) {
		p := NewJitteredPacer(base, base)
		low := time.Duration(float64(base) * jitterMin)
		high := time.Duration(float64(base) * jitterMax)
		for i := 0; i < 1000; i++ {
			got := p.Jitter(base)
			if got < low || got > high {
				t.Fatalf("Jitter %v outside [%v, %v]", got, low, high)
			}
		}
	})

	t.Run("ZeroBase", func(t *testing.T) {
		p := NewJitteredPacer(0, 0)
		if got := p.Jitter(0); got != 0 {
			t.Errorf("Expected zero jitter for zero base, got %v", got)
		}
	})

	t.Run("IndependentDraws", func(t *testing.T) {
		draws := []float64{0.0, 1.0}
		i := 0
		p := NewJitteredPacer(base, base)
		p.randFloat = func() float64 {
			v := draws[i%len(draws)]
			i++
			return v
		}

		first := p.Jitter(base)
		second := p.Jitter(base)
		if first == second {
			t.Error("Expected consecutive draws to differ")
		}
		if want := time.Duration(float64(base) * jitterMin); first != want {
			t.Errorf("Expected low draw %v, got %v", want, first)
		}
		if want := time.Duration(float64(base) * jitterMax); second != want {
			t.Errorf("Expected high draw %v, got %v", want, second)
		}
	})
}

func TestPacer(t *testing.T) {
	t.Run("ZeroDelayReturnsImmediately", func(t *testing.T) {
		p := NewJitteredPacer(0, 0)
		start := time.Now()
		if err := p.WaitAction(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("Zero delay took %v", elapsed)
		}
	})

	t.Run("CancelledContextUnblocks", func(t *testing.T) {
		p := NewJitteredPacer(time.Minute, time.Minute)
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := p.WaitAction(ctx)
		if err == nil {
			t.Fatal("Expected context error")
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("Cancellation took %v to unblock", elapsed)
		}
	})

	t.Run("ShortDelayCompletes", func(t *testing.T) {
		p := NewJitteredPacer(10*time.Millisecond, 10*time.Millisecond)
		if err := p.WaitProfileCheck(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})
}
