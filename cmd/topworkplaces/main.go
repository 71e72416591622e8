package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/NivBraz/topworkplaces/internal/app"
	"github.com/NivBraz/topworkplaces/internal/config"
	"github.com/NivBraz/topworkplaces/internal/models"
)

// errRunFailed is returned after the failure has already been reported.
var errRunFailed = errors.New("run failed")

func main() {
	// Create context that listens for the interrupt signal from the OS
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "topworkplaces",
		Short: "Report the workplaces with the most shifts",
		Long: `Fetches every shift from the shifts API, counts shifts per workplace,
and prints the top workplaces with their names as JSON.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := applyFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := newLogger(cfg.Log.Level, stderr)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), cfg, logger, stdout, stderr)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default "+config.DefaultPath+" if present)")
	fs.String("base-url", "", "shifts API base URL")
	fs.IntP("top", "n", 0, "number of workplaces to report")
	fs.Int("concurrency", 0, "workplace lookups in flight (1 = sequential)")
	fs.Int("timeout", 0, "per-request timeout in seconds")
	fs.BoolP("verbose", "v", false, "enable debug logging")
	fs.Bool("progress", false, "show a progress bar while resolving workplaces")
	fs.Bool("with-stats", false, "print the full report including run stats")

	return cmd
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	if fs.Changed("base-url") {
		if cfg.API.BaseURL, err = fs.GetString("base-url"); err != nil {
			return err
		}
	}
	if fs.Changed("top") {
		if cfg.Output.TopN, err = fs.GetInt("top"); err != nil {
			return err
		}
	}
	if fs.Changed("concurrency") {
		if cfg.Concurrency, err = fs.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if fs.Changed("timeout") {
		if cfg.API.Timeout, err = fs.GetInt("timeout"); err != nil {
			return err
		}
	}
	if fs.Changed("progress") {
		if cfg.Output.ShowProgress, err = fs.GetBool("progress"); err != nil {
			return err
		}
	}
	if fs.Changed("with-stats") {
		if cfg.Output.IncludeStats, err = fs.GetBool("with-stats"); err != nil {
			return err
		}
	}
	if verbose, _ := fs.GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	return nil
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(lvl),
	)
	return zap.New(core), nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout, stderr io.Writer) error {
	application, err := app.New(cfg, app.WithLogger(logger), app.WithProgressWriter(stderr))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	report, err := application.Run(ctx)
	if err != nil {
		logger.Error("Run failed",
			zap.String("kind", string(app.ClassifyError(err))),
			zap.Error(err))
		fmt.Fprintln(stderr, app.Describe(err))
		if report == nil {
			return errRunFailed
		}
	}

	if report.Status != models.StatusOK && !cfg.Output.IncludeStats {
		return nil
	}

	output, ferr := app.FormatReport(report, cfg.Output.Indent, cfg.Output.IncludeStats)
	if ferr != nil {
		return fmt.Errorf("failed to marshal results: %w", ferr)
	}
	logger.Info("Top workplaces:", zap.Int("count", len(report.TopWorkplaces)))
	fmt.Fprintln(stdout, string(output))

	if err != nil {
		return errRunFailed
	}
	return nil
}
