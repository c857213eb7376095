package estimator

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/locale"
	"github.com/hammamikhairi/betterrest/internal/logger"
	"github.com/hammamikhairi/betterrest/internal/predictor"
)

const failureText = "Sorry, there was a problem calculating your bedtime."

var shortTime = regexp.MustCompile(`^(1[0-2]|[1-9]):[0-5][0-9] (AM|PM)$`)

func wakeAt(h, m int) time.Time {
	return time.Date(2026, 3, 14, h, m, 0, 0, time.UTC)
}

// fixed returns a predictor that always answers secs and records calls.
func fixed(secs float64, calls *[][3]float64) predictor.Func {
	return func(_ context.Context, wake, sleep, coffee float64) (float64, error) {
		if calls != nil {
			*calls = append(*calls, [3]float64{wake, sleep, coffee})
		}
		return secs, nil
	}
}

func failing(err error) predictor.Func {
	return func(context.Context, float64, float64, float64) (float64, error) {
		return 0, err
	}
}

func form(wake time.Time, sleep float64, coffee int) domain.FormState {
	return domain.FormState{WakeUp: wake, SleepAmount: sleep, CoffeeAmount: coffee}
}

func TestEstimateSubtractsPrediction(t *testing.T) {
	var calls [][3]float64
	got, err := Estimate(context.Background(), wakeAt(7, 0), 8, 1, fixed(28800, &calls))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	want := time.Date(2026, 3, 13, 23, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if len(calls) != 1 || calls[0] != [3]float64{25200, 8, 1} {
		t.Fatalf("unexpected predictor calls %v", calls)
	}
}

func TestEstimateWakeSecondsIgnoreSeconds(t *testing.T) {
	var calls [][3]float64
	wake := time.Date(2026, 3, 14, 6, 45, 31, 500, time.UTC)
	if _, err := Estimate(context.Background(), wake, 7.5, 3, fixed(1, &calls)); err != nil {
		t.Fatal(err)
	}
	if calls[0][0] != 6*3600+45*60 {
		t.Fatalf("wake seconds = %v", calls[0][0])
	}
}

func TestBedtimeFormatting(t *testing.T) {
	e := New(fixed(28800, nil), nil)

	got, err := e.Bedtime(context.Background(), form(wakeAt(7, 0), 8, 1))
	if err != nil {
		t.Fatalf("bedtime: %v", err)
	}
	if got != "11:00 PM" {
		t.Fatalf("got %q, want %q", got, "11:00 PM")
	}

	gb := New(fixed(28800, nil), locale.New("en-GB"))
	got, _ = gb.Bedtime(context.Background(), form(wakeAt(7, 0), 8, 1))
	if got != "23:00" {
		t.Fatalf("en-GB got %q, want %q", got, "23:00")
	}
}

func TestBedtimeFailures(t *testing.T) {
	tests := []struct {
		name string
		p    domain.SleepPredictor
	}{
		{"load failure", failing(predictor.ErrModelLoad)},
		{"inference failure", failing(predictor.ErrInference)},
		{"nil predictor", nil},
		{"panic", predictor.Func(func(context.Context, float64, float64, float64) (float64, error) {
			panic("model exploded")
		})},
		{"nan", fixed(math.NaN(), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.p, nil).Bedtime(context.Background(), form(wakeAt(7, 0), 8, 1))
			if !errors.Is(err, domain.ErrEstimation) {
				t.Fatalf("expected ErrEstimation, got %v", err)
			}
			if got != failureText {
				t.Fatalf("got %q, want failure message", got)
			}
		})
	}
}

func TestBedtimeKeepsCause(t *testing.T) {
	_, err := New(failing(predictor.ErrModelLoad), nil).Bedtime(context.Background(), form(wakeAt(7, 0), 8, 1))
	if !errors.Is(err, predictor.ErrModelLoad) {
		t.Fatalf("expected wrapped ErrModelLoad, got %v", err)
	}
}

func TestBedtimeBoundariesAccepted(t *testing.T) {
	e := New(predictor.NewLinear(logger.New(logger.LevelOff, nil)), nil)
	ctx := context.Background()

	for _, sleep := range []float64{domain.MinSleepHours, domain.MaxSleepHours} {
		for _, coffee := range []int{domain.MinCoffee, domain.MaxCoffee} {
			got, err := e.Bedtime(ctx, form(wakeAt(7, 0), sleep, coffee))
			if err != nil {
				t.Fatalf("sleep=%v coffee=%d: %v", sleep, coffee, err)
			}
			if !shortTime.MatchString(got) {
				t.Fatalf("sleep=%v coffee=%d: %q is not a short time", sleep, coffee, got)
			}
		}
	}
}

func TestBedtimeDeterministic(t *testing.T) {
	e := New(predictor.NewLinear(logger.New(logger.LevelOff, nil)), nil)
	f := form(wakeAt(6, 30), 7.25, 4)

	first, err := e.Bedtime(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := e.Bedtime(context.Background(), f)
		if again != first {
			t.Fatalf("call %d returned %q, first returned %q", i, again, first)
		}
	}
}

func TestBedtimeDefaultForm(t *testing.T) {
	e := New(predictor.NewLinear(logger.New(logger.LevelOff, nil)), nil)
	got, err := e.Bedtime(context.Background(), domain.DefaultForm(wakeAt(12, 0), time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if got != domain.PlaceholderBedtime {
		t.Fatalf("got %q, want %q", got, domain.PlaceholderBedtime)
	}
}

func TestBedtimeAllValidInputs(t *testing.T) {
	e := New(predictor.NewLinear(logger.New(logger.LevelOff, nil)), nil)
	ctx := context.Background()

	for h := 0; h < 24; h += 3 {
		for sleep := domain.MinSleepHours; sleep <= domain.MaxSleepHours; sleep += 1.25 {
			for coffee := domain.MinCoffee; coffee <= domain.MaxCoffee; coffee += 4 {
				got, err := e.Bedtime(ctx, form(wakeAt(h, 15), sleep, coffee))
				if err != nil {
					t.Fatalf("h=%d sleep=%v coffee=%d: %v", h, sleep, coffee, err)
				}
				if !shortTime.MatchString(got) {
					t.Fatalf("h=%d sleep=%v coffee=%d: %q", h, sleep, coffee, got)
				}
			}
		}
	}
}
