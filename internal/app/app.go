package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NivBraz/topworkplaces/internal/config"
	"github.com/NivBraz/topworkplaces/internal/models"
	"github.com/NivBraz/topworkplaces/pkg/fetcher"
	"github.com/NivBraz/topworkplaces/pkg/parser"
)

// API is the subset of the shifts service the report needs.
type API interface {
	FetchShifts(ctx context.Context) ([]byte, error)
	FetchWorkplace(ctx context.Context, id models.ID) ([]byte, error)
}

// App represents the main application
type App struct {
	config   *config.Config
	api      API
	logger   *zap.Logger
	progress io.Writer
}

type Option func(*App)

func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithProgressWriter sets where the progress bar is drawn when
// output.showProgress is enabled. Defaults to stderr.
func WithProgressWriter(w io.Writer) Option {
	return func(a *App) { a.progress = w }
}

// WithAPI replaces the HTTP fetcher.
func WithAPI(api API) Option {
	return func(a *App) { a.api = api }
}

// New creates a new instance of the application
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("invalid configuration: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		config:   cfg,
		logger:   zap.NewNop(),
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.api == nil {
		f, err := fetcher.New(fetcher.FetcherConfig{
			BaseURL:           cfg.API.BaseURL,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Timeout:           cfg.Timeout(),
			UserAgent:         cfg.API.UserAgent,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize fetcher: %w", err)
		}
		a.api = f
	}

	return a, nil
}

// Close releases idle HTTP connections held by the fetcher.
func (a *App) Close() {
	if c, ok := a.api.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// Run fetches all shifts, ranks workplaces by shift count and resolves the
// names of the top entries. An empty shift list or an empty ranking is not
// an error; the report status says which case applied.
func (a *App) Run(ctx context.Context) (*models.Report, error) {
	startTime := time.Now()

	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID))
	ctx = fetcher.WithRequestID(ctx, runID)

	report := &models.Report{TopWorkplaces: []models.ReportEntry{}}
	defer func() {
		report.Stats.TimeElapsed = int(time.Since(startTime).Milliseconds())
	}()

	log.Info("Fetching shifts from API", zap.String("base_url", a.config.API.BaseURL))
	shifts, err := a.fetchShifts(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	report.Stats.TotalShifts = len(shifts)

	if len(shifts) == 0 {
		log.Info("No shifts found.")
		report.Status = models.StatusNoShifts
		return report, nil
	}
	log.Info("Retrieved shifts. Processing data...", zap.Int("shifts", len(shifts)))

	counts := CountShifts(shifts)
	if ignored := len(shifts) - counts.Total(); ignored > 0 {
		log.Debug("Ignored shifts without a workplace id", zap.Int("ignored", ignored))
	}
	report.Stats.TotalWorkplaces = counts.Len()

	top := Rank(counts, a.config.Output.TopN)
	if len(top) == 0 {
		log.Info("No active workplaces found.")
		report.Status = models.StatusNoActiveWorkplaces
		return report, nil
	}

	log.Info("Fetching workplace details...", zap.Int("workplaces", len(top)))
	report.TopWorkplaces = a.resolve(ctx, log, top)
	report.Stats.Skipped = len(top) - len(report.TopWorkplaces)
	report.Status = models.StatusOK

	log.Info("Top workplaces resolved",
		zap.Int("resolved", len(report.TopWorkplaces)),
		zap.Int("skipped", report.Stats.Skipped))

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}

func (a *App) fetchShifts(ctx context.Context, log *zap.Logger) ([]models.Shift, error) {
	body, err := a.api.FetchShifts(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("Full API response", zap.ByteString("body", body))

	shifts, err := parser.ParseShifts(body)
	if err != nil {
		return nil, err
	}
	log.Debug("Extracted shifts", zap.Int("total", len(shifts)))
	return shifts, nil
}
