// Package estimator derives a recommended bedtime from the form inputs
// and a sleep predictor.
package estimator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/locale"
)

// Estimate returns wakeUp minus the sleep the predictor says is needed.
//
// Inputs are trusted to be within the presentation bounds and are not
// re-validated. Every predictor failure, including a panic or a
// non-finite result, is reported as domain.ErrEstimation.
func Estimate(ctx context.Context, wakeUp time.Time, sleepHours float64, coffeeCount int, p domain.SleepPredictor) (bedtime time.Time, err error) {
	if p == nil {
		return time.Time{}, fmt.Errorf("%w: no predictor", domain.ErrEstimation)
	}

	defer func() {
		if r := recover(); r != nil {
			bedtime = time.Time{}
			err = fmt.Errorf("%w: predictor panicked: %v", domain.ErrEstimation, r)
		}
	}()

	wake := float64(domain.WakeSeconds(wakeUp))
	secs, err := p.Predict(ctx, wake, sleepHours, float64(coffeeCount))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrEstimation, err)
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, fmt.Errorf("%w: predictor returned %v", domain.ErrEstimation, secs)
	}

	d := time.Duration(math.Round(secs * float64(time.Second)))
	return wakeUp.Add(-d), nil
}

// Estimator formats estimates for display.
type Estimator struct {
	predictor domain.SleepPredictor
	loc       *locale.Locale
}

// New creates an Estimator. A nil locale means American English.
func New(p domain.SleepPredictor, loc *locale.Locale) *Estimator {
	if loc == nil {
		loc = locale.Default()
	}
	return &Estimator{predictor: p, loc: loc}
}

// Bedtime returns the formatted bedtime for f, or the localized failure
// message together with the underlying error.
func (e *Estimator) Bedtime(ctx context.Context, f domain.FormState) (string, error) {
	t, err := Estimate(ctx, f.WakeUp, f.SleepAmount, f.CoffeeAmount, e.predictor)
	if err != nil {
		return e.loc.Failure(), err
	}
	return e.loc.FormatTime(t), nil
}

// Locale returns the locale used for formatting.
func (e *Estimator) Locale() *locale.Locale { return e.loc }
