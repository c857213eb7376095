package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/logger"
)

// Compile-time interface check.
var _ domain.SleepPredictor = (*ONNX)(nil)

// ONNXConfig holds the paths needed to run an ONNX sleep model.
type ONNXConfig struct {
	Model   string // e.g. "models/sleep_calculator.onnx"
	OnnxLib string // e.g. "bin/libonnxruntime.so"
}

func (c ONNXConfig) validate() error {
	if c.Model == "" {
		return errors.New("no model path configured")
	}
	if _, err := os.Stat(c.Model); err != nil {
		return err
	}
	if c.OnnxLib != "" {
		if _, err := os.Stat(c.OnnxLib); err != nil {
			return err
		}
	}
	return nil
}

// ONNX runs a regression model through ONNX Runtime. The model must
// take either a single [1,3] float input (wake, estimatedSleep, coffee)
// or three [1,1] float inputs in that order, and produce a [1,1] float
// output holding the actual sleep in seconds.
//
// The runtime environment and session are created on the first Predict
// call. Call Close to release them.
type ONNX struct {
	cfg ONNXConfig
	log *logger.Logger

	mu      sync.Mutex
	envUp   bool
	session *ort.AdvancedSession
	inputs  []*ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewONNX creates an ONNX-backed predictor. Nothing is loaded until the
// first prediction.
func NewONNX(cfg ONNXConfig, log *logger.Logger) *ONNX {
	return &ONNX{cfg: cfg, log: log}
}

// Predict runs one inference.
func (p *ONNX) Predict(ctx context.Context, wake, estimatedSleep, coffee float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.load(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	values := []float32{float32(wake), float32(estimatedSleep), float32(coffee)}
	if len(p.inputs) == 1 {
		copy(p.inputs[0].GetData(), values)
	} else {
		for i, in := range p.inputs {
			in.GetData()[0] = values[i]
		}
	}

	if err := p.session.Run(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInference, err)
	}

	out := float64(p.output.GetData()[0])
	if math.IsNaN(out) || math.IsInf(out, 0) || out <= 0 {
		return 0, fmt.Errorf("%w: model produced %v", ErrInference, out)
	}
	p.log.Debug("onnx: wake=%.0f sleep=%.2f coffee=%.0f -> %.0fs", wake, estimatedSleep, coffee, out)
	return out, nil
}

// load must be called with p.mu held.
func (p *ONNX) load() error {
	if p.session != nil {
		return nil
	}
	if err := p.cfg.validate(); err != nil {
		return err
	}

	if !p.envUp {
		p.log.Debug("onnx: initializing runtime (lib=%s)", p.cfg.OnnxLib)
		if p.cfg.OnnxLib != "" {
			ort.SetSharedLibraryPath(p.cfg.OnnxLib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initializing runtime: %w", err)
		}
		p.envUp = true
	}

	inInfo, outInfo, err := ort.GetInputOutputInfo(p.cfg.Model)
	if err != nil {
		return fmt.Errorf("reading model info: %w", err)
	}
	if len(outInfo) == 0 {
		return errors.New("model has no outputs")
	}

	var inShapes []ort.Shape
	switch len(inInfo) {
	case 1:
		inShapes = []ort.Shape{ort.NewShape(1, 3)}
	case 3:
		inShapes = []ort.Shape{ort.NewShape(1, 1), ort.NewShape(1, 1), ort.NewShape(1, 1)}
	default:
		return fmt.Errorf("model has %d inputs, want 1 or 3", len(inInfo))
	}

	inNames := make([]string, 0, len(inInfo))
	inValues := make([]ort.Value, 0, len(inInfo))
	inputs := make([]*ort.Tensor[float32], 0, len(inInfo))
	for i, info := range inInfo {
		t, err := ort.NewEmptyTensor[float32](inShapes[i])
		if err != nil {
			destroyTensors(inputs)
			return err
		}
		inputs = append(inputs, t)
		inNames = append(inNames, info.Name)
		inValues = append(inValues, t)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		destroyTensors(inputs)
		return err
	}

	session, err := ort.NewAdvancedSession(
		p.cfg.Model,
		inNames, []string{outInfo[0].Name},
		inValues, []ort.Value{output},
		nil,
	)
	if err != nil {
		destroyTensors(inputs)
		output.Destroy()
		return fmt.Errorf("creating session: %w", err)
	}

	p.inputs = inputs
	p.output = output
	p.session = session
	p.log.Info("onnx: loaded %s (%d inputs)", p.cfg.Model, len(inputs))
	return nil
}

// Close releases the session and the runtime environment.
func (p *ONNX) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.session != nil {
		errs = append(errs, p.session.Destroy())
		p.session = nil
	}
	destroyTensors(p.inputs)
	p.inputs = nil
	if p.output != nil {
		errs = append(errs, p.output.Destroy())
		p.output = nil
	}
	if p.envUp {
		errs = append(errs, ort.DestroyEnvironment())
		p.envUp = false
	}
	return errors.Join(errs...)
}

func destroyTensors(ts []*ort.Tensor[float32]) {
	for _, t := range ts {
		t.Destroy()
	}
}
