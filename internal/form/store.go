// Package form owns the bedtime form state. Every change to one of the
// three fields runs exactly one recomputation with the latest values of
// all fields and publishes the result to subscribers.
package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/estimator"
	"github.com/hammamikhairi/betterrest/internal/logger"
)

// Option configures the store.
type Option func(*Store)

// WithInitial sets the starting form state. Values are clamped.
func WithInitial(f domain.FormState) Option {
	return func(s *Store) {
		s.state = normalize(f)
	}
}

// WithListener registers a listener before the first computation.
func WithListener(l domain.ResultListener) Option {
	return func(s *Store) {
		s.subscribe(l)
	}
}

// Store holds the form state and the last computed result.
//
// Recomputation runs synchronously on the caller's goroutine. Listeners
// are invoked in revision order while the store is locked, so they must
// not call back into the store.
type Store struct {
	mu        sync.Mutex
	est       *estimator.Estimator
	log       *logger.Logger
	state     domain.FormState
	result    domain.BedtimeResult
	listeners []subscription
	nextSub   int
}

type subscription struct {
	id int
	l  domain.ResultListener
}

// New creates a store with the default form (07:00, 8 hours, 1 cup).
// The result holds the placeholder until Refresh or a field change.
func New(est *estimator.Estimator, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		est:   est,
		log:   log,
		state: domain.DefaultForm(time.Now(), nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.result = domain.BedtimeResult{
		Text: domain.PlaceholderBedtime,
		Form: s.state,
	}
	return s
}

// State returns a copy of the current form.
func (s *Store) State() domain.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the most recent result.
func (s *Store) Result() domain.BedtimeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Subscribe registers l for future results and returns a function that
// removes it.
func (s *Store) Subscribe(l domain.ResultListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.subscribe(l)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) subscribe(l domain.ResultListener) int {
	s.nextSub++
	s.listeners = append(s.listeners, subscription{id: s.nextSub, l: l})
	return s.nextSub
}

// Refresh recomputes the result for the current form without changing it.
func (s *Store) Refresh(ctx context.Context) domain.BedtimeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recompute(ctx, domain.FieldNone)
}

// SetWakeUp changes the wake-up time. Seconds are dropped.
func (s *Store) SetWakeUp(ctx context.Context, t time.Time) domain.BedtimeResult {
	t = t.Truncate(time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Equal(s.state.WakeUp) {
		return s.result
	}
	s.state.WakeUp = t
	return s.recompute(ctx, domain.FieldWakeUp)
}

// SetSleepAmount changes the desired sleep, snapped to the stepper grid.
func (s *Store) SetSleepAmount(ctx context.Context, hours float64) domain.BedtimeResult {
	hours = domain.ClampSleep(hours)

	s.mu.Lock()
	defer s.mu.Unlock()
	if hours == s.state.SleepAmount {
		return s.result
	}
	s.state.SleepAmount = hours
	return s.recompute(ctx, domain.FieldSleepAmount)
}

// SetCoffeeAmount changes the daily coffee count, clamped to the picker range.
func (s *Store) SetCoffeeAmount(ctx context.Context, cups int) domain.BedtimeResult {
	cups = domain.ClampCoffee(cups)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cups == s.state.CoffeeAmount {
		return s.result
	}
	s.state.CoffeeAmount = cups
	return s.recompute(ctx, domain.FieldCoffeeAmount)
}

// StepWakeUp moves the wake-up time by the given minutes, wrapping
// around midnight on the same calendar day.
func (s *Store) StepWakeUp(ctx context.Context, minutes int) domain.BedtimeResult {
	return s.SetWakeUp(ctx, shiftClock(s.State().WakeUp, minutes))
}

// StepSleepAmount moves the desired sleep by n stepper increments.
func (s *Store) StepSleepAmount(ctx context.Context, n int) domain.BedtimeResult {
	return s.SetSleepAmount(ctx, s.State().SleepAmount+float64(n)*domain.SleepStep)
}

// StepCoffeeAmount moves the coffee count by n cups.
func (s *Store) StepCoffeeAmount(ctx context.Context, n int) domain.BedtimeResult {
	return s.SetCoffeeAmount(ctx, s.State().CoffeeAmount+n)
}

// recompute must be called with s.mu held.
func (s *Store) recompute(ctx context.Context, trigger domain.Field) domain.BedtimeResult {
	text, err := s.est.Bedtime(ctx, s.state)

	res := domain.BedtimeResult{
		Text:     text,
		Failed:   err != nil,
		Form:     s.state,
		Trigger:  trigger,
		Revision: s.result.Revision + 1,
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.Debug("form: estimation cancelled (rev %d)", res.Revision)
		} else {
			s.log.Warn("form: %v", err)
		}
	} else {
		s.log.Debug("form: rev %d %s changed -> %s", res.Revision, trigger, text)
	}

	s.result = res
	for _, sub := range s.listeners {
		sub.l.BedtimeChanged(res)
	}
	return res
}

func normalize(f domain.FormState) domain.FormState {
	if f.WakeUp.IsZero() {
		f.WakeUp = domain.DefaultWakeTime(time.Now(), nil)
	}
	f.WakeUp = f.WakeUp.Truncate(time.Minute)
	f.SleepAmount = domain.ClampSleep(f.SleepAmount)
	f.CoffeeAmount = domain.ClampCoffee(f.CoffeeAmount)
	return f
}

func shiftClock(t time.Time, minutes int) time.Time {
	const day = 24 * 60
	m := (t.Hour()*60 + t.Minute() + minutes) % day
	if m < 0 {
		m += day
	}
	return time.Date(t.Year(), t.Month(), t.Day(), m/60, m%60, 0, 0, t.Location())
}
