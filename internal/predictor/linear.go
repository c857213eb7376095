package predictor

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/logger"
)

//go:embed model.yaml
var bundledModel []byte

// Compile-time interface check.
var _ domain.SleepPredictor = (*Linear)(nil)

// Coefficients are the weights of the linear sleep model.
type Coefficients struct {
	Intercept      float64 `yaml:"intercept"`
	Wake           float64 `yaml:"wake"`
	EstimatedSleep float64 `yaml:"estimated_sleep"`
	Coffee         float64 `yaml:"coffee"`
}

// Artifact is the on-disk representation of a linear sleep model.
type Artifact struct {
	Name         string       `yaml:"name"`
	Version      int          `yaml:"version"`
	Output       string       `yaml:"output"`
	Coefficients Coefficients `yaml:"coefficients"`
}

// LinearOption configures a Linear predictor.
type LinearOption func(*Linear)

// WithModelFile loads the artifact from path instead of the bundled one.
func WithModelFile(path string) LinearOption {
	return func(l *Linear) {
		l.source = path
		l.read = func() ([]byte, error) { return os.ReadFile(path) }
	}
}

// WithModelBytes uses raw YAML as the artifact. Useful in tests.
func WithModelBytes(b []byte) LinearOption {
	return func(l *Linear) {
		l.source = "inline"
		l.read = func() ([]byte, error) { return b, nil }
	}
}

// Linear evaluates a linear regression artifact. The artifact is read and
// parsed on the first Predict call; a failed load is retried on the next
// call.
type Linear struct {
	log    *logger.Logger
	source string
	read   func() ([]byte, error)

	mu    sync.Mutex
	model *Artifact
}

// NewLinear creates a predictor backed by the bundled artifact unless an
// option points it elsewhere.
func NewLinear(log *logger.Logger, opts ...LinearOption) *Linear {
	l := &Linear{
		log:    log,
		source: "bundled",
		read:   func() ([]byte, error) { return bundledModel, nil },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Predict returns the actual sleep needed, in seconds.
func (l *Linear) Predict(ctx context.Context, wake, estimatedSleep, coffee float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m, err := l.load()
	if err != nil {
		return 0, err
	}

	c := m.Coefficients
	out := c.Intercept + c.Wake*wake + c.EstimatedSleep*estimatedSleep + c.Coffee*coffee
	if math.IsNaN(out) || math.IsInf(out, 0) || out <= 0 {
		return 0, fmt.Errorf("%w: %s produced %v", ErrInference, m.Name, out)
	}
	l.log.Debug("linear: wake=%.0f sleep=%.2f coffee=%.0f -> %.0fs", wake, estimatedSleep, coffee, out)
	return out, nil
}

// Artifact returns the loaded model, loading it if needed.
func (l *Linear) Artifact() (*Artifact, error) {
	return l.load()
}

func (l *Linear) load() (*Artifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, nil
	}

	raw, err := l.read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrModelLoad, l.source, err)
	}
	m, err := ParseArtifact(raw)
	if err != nil {
		return nil, err
	}

	l.log.Info("linear: loaded model %s v%d (%s)", m.Name, m.Version, l.source)
	l.model = m
	return m, nil
}

// ParseArtifact decodes and validates a YAML artifact.
func ParseArtifact(raw []byte) (*Artifact, error) {
	var m Artifact
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: decoding artifact: %v", ErrModelLoad, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%w: artifact has no name", ErrModelLoad)
	}
	if m.Coefficients == (Coefficients{}) {
		return nil, fmt.Errorf("%w: artifact %s has no coefficients", ErrModelLoad, m.Name)
	}
	return &m, nil
}
