package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/attune/internal/config"
	"github.com/crimson-sun/attune/internal/engine"
	"github.com/crimson-sun/attune/internal/modality/face"
	"github.com/crimson-sun/attune/internal/modality/text"
	"github.com/crimson-sun/attune/internal/output"
	"github.com/crimson-sun/attune/internal/output/async"
	"github.com/crimson-sun/attune/internal/output/file"
	"github.com/crimson-sun/attune/internal/output/multi"
	"github.com/crimson-sun/attune/internal/output/sqlite"
	"github.com/crimson-sun/attune/internal/output/stdout"
	"github.com/crimson-sun/attune/internal/output/webhook"
)

func buildText(cfg config.TextConfig) (text.Classifier, error) {
	switch cfg.Backend {
	case "static":
		return text.NewLexicon(nil), nil
	case "onnx":
		c, err := text.NewONNX(text.PathsIn(cfg.ModelDir), cfg.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("load text model from %s: %w", cfg.ModelDir, err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown text backend %q", cfg.Backend)
}

func buildFace(cfg config.FaceConfig) (face.Classifier, error) {
	return face.New(cfg.Backend, face.Settings{
		Endpoint: cfg.Endpoint,
		Token:    cfg.Token,
		Timeout:  cfg.Timeout,
	})
}

// buildEngine returns the engine and the text classifier, which the caller
// must close.
func buildEngine(cfg config.Config) (*engine.Engine, text.Classifier, error) {
	tc, err := buildText(cfg.Text)
	if err != nil {
		return nil, nil, err
	}
	fc, err := buildFace(cfg.Face)
	if err != nil {
		tc.Close()
		return nil, nil, err
	}
	slog.Info("engine ready", "text_backend", cfg.Text.Backend, "face_backend", cfg.Face.Backend)
	return engine.New(tc, fc), tc, nil
}

// buildOutputs opens every configured output. The sqlite store is also
// returned so it can serve history queries; it is nil when not configured.
func buildOutputs(cfg config.OutputConfig) (output.Output, *sqlite.Store, error) {
	verbosity, err := output.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return nil, nil, err
	}

	var (
		outs  []output.Output
		store *sqlite.Store
	)
	fail := func(err error) (output.Output, *sqlite.Store, error) {
		return nil, nil, errors.Join(err, multi.New(outs...).Close())
	}

	for _, target := range cfg.Targets {
		switch target {
		case "stdout":
			outs = append(outs, stdout.New(verbosity, cfg.Pretty))
		case "file":
			f, err := file.New(cfg.File, verbosity, file.WithMaxSize(cfg.FileMaxSize))
			if err != nil {
				return fail(err)
			}
			outs = append(outs, f)
		case "webhook":
			wh := webhook.New(cfg.WebhookURL, webhook.WithVerbosity(verbosity))
			outs = append(outs, async.New(wh, async.WithDropOnFull()))
		case "sqlite":
			s, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return fail(err)
			}
			store = s
			outs = append(outs, s)
		default:
			return fail(fmt.Errorf("unknown output %q", target))
		}
	}
	slog.Debug("outputs ready", "targets", cfg.Targets, "verbosity", verbosity)
	return multi.New(outs...), store, nil
}
