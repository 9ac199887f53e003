package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/attune/internal/config"
	"github.com/crimson-sun/attune/internal/pipeline"
	"github.com/crimson-sun/attune/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			overrideString(cmd, "addr", &cfg.Addr)
			overrideString(cmd, "text-backend", &cfg.Text.Backend)
			overrideString(cmd, "face-backend", &cfg.Face.Backend)
			if f := cmd.Flags().Lookup("output"); f.Changed {
				cfg.Output.Targets = config.ParseTargets(f.Value.String())
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides ATTUNE_ADDR)")
	cmd.Flags().String("text-backend", "", "onnx or static (overrides ATTUNE_TEXT_BACKEND)")
	cmd.Flags().String("face-backend", "", "score, cues or remote (overrides ATTUNE_FACE_BACKEND)")
	cmd.Flags().String("output", "", "comma-separated outputs (overrides ATTUNE_OUTPUT)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) (err error) {
	eng, tc, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer tc.Close()
	if err := eng.Ready(ctx); err != nil {
		slog.Warn("face backend not reachable, faces will report no signal until it recovers", "error", err)
	}

	out, store, err := buildOutputs(cfg.Output)
	if err != nil {
		return err
	}
	p := pipeline.New(eng, out)
	defer func() { err = errors.Join(err, p.Close()) }()

	var opts []server.Option
	if store != nil {
		opts = append(opts, server.WithHistory(store))
	}
	srv := server.New(p, eng, opts...)

	slog.Info("attune starting", "addr", cfg.Addr, "outputs", cfg.Output.Targets)
	if err := srv.ListenAndServe(ctx, cfg.Addr, cfg.ShutdownTimeout); err != nil {
		return err
	}
	slog.Info("attune stopped")
	return nil
}
