// Package predictor provides SleepPredictor implementations: a linear
// regression artifact bundled with the binary, an ONNX Runtime backed
// model, and a function adapter for stubs.
package predictor

import (
	"context"
	"errors"

	"github.com/hammamikhairi/betterrest/internal/domain"
)

// Sentinel errors returned by predictors.
var (
	ErrModelLoad = errors.New("sleep model could not be loaded")
	ErrInference = errors.New("sleep model inference failed")
)

// Compile-time interface check.
var _ domain.SleepPredictor = Func(nil)

// Func adapts a plain function to domain.SleepPredictor.
type Func func(ctx context.Context, wake, estimatedSleep, coffee float64) (float64, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, wake, estimatedSleep, coffee float64) (float64, error) {
	return f(ctx, wake, estimatedSleep, coffee)
}
