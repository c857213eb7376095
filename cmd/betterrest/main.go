// BetterRest — recommends a bedtime from your wake-up time, how much
// sleep you want and how much coffee you drink.
//
// Usage:
//
//	betterrest [-verbose] [-quiet] [-locale en-GB] [-model sleep.onnx]
//	betterrest -print -wake 06:30 -sleep 7.5 -coffee 2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/betterrest/internal/config"
	"github.com/hammamikhairi/betterrest/internal/display"
	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/estimator"
	"github.com/hammamikhairi/betterrest/internal/form"
	"github.com/hammamikhairi/betterrest/internal/locale"
	"github.com/hammamikhairi/betterrest/internal/logger"
	"github.com/hammamikhairi/betterrest/internal/predictor"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	_ = godotenv.Load()

	cfg, err := config.Load(args, os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	// Direct logs to a file by default so the form stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" && !cfg.Print {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(cfg.LogLevel, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := locale.New(cfg.Locale)
	log.Debug("locale %s (layout %q)", loc.Tag(), loc.TimeLayout())

	p, closePredictor := newPredictor(cfg, log)
	defer closePredictor()

	est := estimator.New(p, loc)

	if cfg.Print {
		text, err := est.Bedtime(ctx, domain.FormState{
			WakeUp:       cfg.WakeUp,
			SleepAmount:  cfg.Sleep,
			CoffeeAmount: cfg.Coffee,
		})
		fmt.Println(text)
		if err != nil {
			log.Error("%v", err)
			return 1
		}
		return 0
	}

	store := form.New(est, log.With("form"))
	store.Refresh(ctx)

	fmt.Println(display.RenderBanner(0))

	ui := display.NewUI(store, loc)
	if err := ui.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("display: %v", err)
		return 1
	}
	return 0
}

// newPredictor builds the configured sleep model. The returned function
// releases any runtime resources.
func newPredictor(cfg *config.Config, log *logger.Logger) (domain.SleepPredictor, func()) {
	switch cfg.ResolvedBackend() {
	case config.BackendONNX:
		p := predictor.NewONNX(predictor.ONNXConfig{
			Model:   cfg.Model,
			OnnxLib: cfg.OnnxLib,
		}, log)
		log.Info("using ONNX sleep model %s", cfg.Model)
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn("closing ONNX model: %v", err)
			}
		}
	default:
		var opts []predictor.LinearOption
		if cfg.Model != "" {
			opts = append(opts, predictor.WithModelFile(cfg.Model))
			log.Info("using linear sleep model %s", cfg.Model)
		} else {
			log.Info("using bundled linear sleep model")
		}
		return predictor.NewLinear(log, opts...), func() {}
	}
}
