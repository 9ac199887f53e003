package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/attune/internal/config"
	"github.com/crimson-sun/attune/internal/logging"
)

// app carries state shared by every subcommand.
type app struct {
	cfg        config.Config
	configPath string
	logLevel   string
}

// NewRootCmd builds the attune command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "attune",
		Short: "Estimate affective state from text and face signals",
		Long: `attune fuses a text emotion estimate and a facial emotion estimate into
one labeled emotion with a confidence score, and maps the result to a
tiered list of suggested tasks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (overrides ATTUNE_CONFIG)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides ATTUNE_LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newFuseCmd(a),
		newRecommendCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) load(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	if a.configPath != "" {
		os.Setenv("ATTUNE_CONFIG", a.configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	// Only serve may write plain-text logs; every other command prints JSON
	// on stdout and keeps stderr machine-readable too.
	jsonLogs := cmd.Name() != "serve" || cfg.Output.Has("stdout")
	logging.Init(jsonLogs, logging.ParseLevel(cfg.LogLevel))
	return nil
}

// overrideString applies a flag value over the config when the flag was set.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}
