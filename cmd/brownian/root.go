package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/brownian"
	"github.com/aretw0/brownian/internal/logging"
	"github.com/aretw0/brownian/pkg/config"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brownian",
	Short: "Brownian drives particle reaction-diffusion models as composable processes",
	Long: `Brownian loads a particle-simulator model description and exposes it as a
process: a schema, an initial state, and an update that advances the model by an
interval and reports molecule count deltas and positions.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Process configuration file (.yaml or .json)")
	flags.StringP("model", "m", "", "Model description file; overrides model_path from --config")
	flags.Int64("seed", 0, "Random seed; overrides the configuration")
	flags.Bool("allow-warnings", false, "Accept models whose validation reports warnings")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.Bool("log-json", false, "Emit logs as JSON")
}

// loadConfig assembles the process configuration from --config and the override flags.
// A single positional argument is taken as the model path.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.ModelPath = model
	} else if len(args) > 0 {
		cfg.ModelPath = args[0]
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("allow-warnings") {
		cfg.AllowWarnings, _ = cmd.Flags().GetBool("allow-warnings")
	}
	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	var opts []logging.Option
	if asJSON, _ := cmd.Flags().GetBool("log-json"); asJSON {
		opts = append(opts, logging.WithJSON())
	}
	return logging.New(level, opts...), nil
}

// openProcess builds the configured process with logging and any extra hooks.
func openProcess(cmd *cobra.Command, args []string, hooks ...domain.LifecycleHooks) (*brownian.Process, *slog.Logger, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	opts := []brownian.Option{brownian.WithLogger(logger)}
	for _, h := range hooks {
		opts = append(opts, brownian.WithLifecycleHooks(h))
	}
	proc, err := brownian.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return proc, logger, nil
}
