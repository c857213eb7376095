package form

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/estimator"
	"github.com/hammamikhairi/betterrest/internal/logger"
	"github.com/hammamikhairi/betterrest/internal/predictor"
)

// recorder is a predictor that answers a fixed duration and remembers
// every call it receives.
type recorder struct {
	secs  float64
	err   error
	calls [][3]float64
}

func (r *recorder) Predict(_ context.Context, wake, sleep, coffee float64) (float64, error) {
	r.calls = append(r.calls, [3]float64{wake, sleep, coffee})
	return r.secs, r.err
}

var day = time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func setupStore(t *testing.T, rec *recorder, opts ...Option) (*Store, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	initial := domain.FormState{WakeUp: at(7, 0), SleepAmount: 8, CoffeeAmount: 1}
	opts = append([]Option{WithInitial(initial)}, opts...)
	return New(estimator.New(rec, nil), log, opts...), context.Background()
}

func TestPlaceholderUntilRefresh(t *testing.T) {
	rec := &recorder{secs: 28800}
	s, ctx := setupStore(t, rec)

	if got := s.Result().Text; got != domain.PlaceholderBedtime {
		t.Fatalf("initial text %q, want placeholder", got)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no estimation before Refresh, got %d", len(rec.calls))
	}

	res := s.Refresh(ctx)
	if res.Text != "11:00 PM" {
		t.Fatalf("refresh text %q", res.Text)
	}
	if res.Revision != 1 || res.Trigger != domain.FieldNone {
		t.Fatalf("unexpected result metadata %+v", res)
	}
}

func TestEachFieldChangeRecomputesOnceWithLatestValues(t *testing.T) {
	rec := &recorder{secs: 28800}
	s, ctx := setupStore(t, rec)

	s.SetWakeUp(ctx, at(6, 30))
	s.SetSleepAmount(ctx, 9.5)
	s.SetCoffeeAmount(ctx, 3)

	want := [][3]float64{
		{6*3600 + 30*60, 8, 1},
		{6*3600 + 30*60, 9.5, 1},
		{6*3600 + 30*60, 9.5, 3},
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Fatalf("predictor calls mismatch (-want +got):\n%s", diff)
	}

	res := s.Result()
	if res.Trigger != domain.FieldCoffeeAmount || res.Revision != 3 {
		t.Fatalf("unexpected result metadata %+v", res)
	}
	if res.Text != "10:30 PM" {
		t.Fatalf("text %q, want 10:30 PM", res.Text)
	}
}

func TestUnchangedValueDoesNotRecompute(t *testing.T) {
	rec := &recorder{secs: 28800}
	s, ctx := setupStore(t, rec)

	s.SetSleepAmount(ctx, 8)
	s.SetCoffeeAmount(ctx, 1)
	s.SetWakeUp(ctx, at(7, 0).Add(20*time.Second))

	if len(rec.calls) != 0 {
		t.Fatalf("expected no calls, got %v", rec.calls)
	}
}

func TestClamping(t *testing.T) {
	rec := &recorder{secs: 28800}
	s, ctx := setupStore(t, rec)

	tests := []struct {
		name string
		do   func()
		want domain.FormState
	}{
		{"sleep below range", func() { s.SetSleepAmount(ctx, 1) },
			domain.FormState{WakeUp: at(7, 0), SleepAmount: 4, CoffeeAmount: 1}},
		{"sleep above range", func() { s.SetSleepAmount(ctx, 30) },
			domain.FormState{WakeUp: at(7, 0), SleepAmount: 12, CoffeeAmount: 1}},
		{"sleep snapped", func() { s.SetSleepAmount(ctx, 7.3) },
			domain.FormState{WakeUp: at(7, 0), SleepAmount: 7.25, CoffeeAmount: 1}},
		{"coffee above range", func() { s.SetCoffeeAmount(ctx, 99) },
			domain.FormState{WakeUp: at(7, 0), SleepAmount: 7.25, CoffeeAmount: 20}},
		{"coffee below range", func() { s.SetCoffeeAmount(ctx, -3) },
			domain.FormState{WakeUp: at(7, 0), SleepAmount: 7.25, CoffeeAmount: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.do()
			if diff := cmp.Diff(tt.want, s.State()); diff != "" {
				t.Fatalf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSteppers(t *testing.T) {
	rec := &recorder{secs: 28800}
	s, ctx := setupStore(t, rec)

	s.StepSleepAmount(ctx, 1)
	if got := s.State().SleepAmount; got != 8.25 {
		t.Fatalf("sleep after +1 step = %v", got)
	}
	s.StepSleepAmount(ctx, -100)
	if got := s.State().SleepAmount; got != domain.MinSleepHours {
		t.Fatalf("sleep after -100 steps = %v", got)
	}

	s.StepCoffeeAmount(ctx, 2)
	if got := s.State().CoffeeAmount; got != 3 {
		t.Fatalf("coffee after +2 = %d", got)
	}

	s.SetWakeUp(ctx, at(23, 50))
	s.StepWakeUp(ctx, 15)
	if got := s.State().WakeUp; !got.Equal(at(0, 5)) {
		t.Fatalf("wake after wrap = %v, want %v", got, at(0, 5))
	}
	s.StepWakeUp(ctx, -10)
	if got := s.State().WakeUp; !got.Equal(at(23, 55)) {
		t.Fatalf("wake after backwards wrap = %v, want %v", got, at(23, 55))
	}
}

func TestFailureShowsMessage(t *testing.T) {
	rec := &recorder{err: predictor.ErrModelLoad}
	s, ctx := setupStore(t, rec)

	res := s.SetCoffeeAmount(ctx, 5)
	if !res.Failed {
		t.Fatal("expected Failed result")
	}
	if res.Text != "Sorry, there was a problem calculating your bedtime." {
		t.Fatalf("text %q", res.Text)
	}
	if got := s.State().CoffeeAmount; got != 5 {
		t.Fatalf("form state should still change on failure, got %d", got)
	}
}

func TestListeners(t *testing.T) {
	rec := &recorder{secs: 3600}
	var seen []uint64
	early := domain.ListenerFunc(func(r domain.BedtimeResult) { seen = append(seen, r.Revision) })
	s, ctx := setupStore(t, rec, WithListener(early))

	var late []domain.Field
	unsubscribe := s.Subscribe(domain.ListenerFunc(func(r domain.BedtimeResult) {
		late = append(late, r.Trigger)
	}))

	s.SetSleepAmount(ctx, 10)
	s.SetCoffeeAmount(ctx, 2)
	unsubscribe()
	s.SetWakeUp(ctx, at(5, 0))

	if diff := cmp.Diff([]uint64{1, 2, 3}, seen); diff != "" {
		t.Fatalf("revisions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.Field{domain.FieldSleepAmount, domain.FieldCoffeeAmount}, late); diff != "" {
		t.Fatalf("triggers mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelledContext(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(estimator.New(predictor.NewLinear(log), nil), log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.Refresh(ctx)
	if !res.Failed {
		t.Fatalf("expected failure with cancelled context, got %q", res.Text)
	}

	ok := s.Refresh(context.Background())
	if ok.Failed {
		t.Fatalf("expected success, got %q", ok.Text)
	}
}
