package app

import (
	"context"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NivBraz/topworkplaces/internal/models"
	"github.com/NivBraz/topworkplaces/pkg/parser"
)

// resolve looks up the name of each ranked workplace. Failures are logged
// and leave the slot empty; the result keeps rank order.
func (a *App) resolve(ctx context.Context, log *zap.Logger, top []models.WorkplaceCount) []models.ReportEntry {
	slots := make([]*models.ReportEntry, len(top))
	bar := a.newProgressBar(len(top))

	if a.config.Concurrency <= 1 {
		for i, wc := range top {
			slots[i] = a.resolveOne(ctx, log, wc)
			bar.tick()
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.config.Concurrency)
		for i, wc := range top {
			g.Go(func() error {
				slots[i] = a.resolveOne(ctx, log, wc)
				bar.tick()
				return nil
			})
		}
		_ = g.Wait()
	}
	bar.finish()

	entries := make([]models.ReportEntry, 0, len(top))
	for _, e := range slots {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries
}

func (a *App) resolveOne(ctx context.Context, log *zap.Logger, wc models.WorkplaceCount) *models.ReportEntry {
	log = log.With(zap.String("workplace_id", string(wc.WorkplaceID)))

	body, err := a.api.FetchWorkplace(ctx, wc.WorkplaceID)
	if err != nil {
		log.Error("Failed to fetch workplace details",
			zap.String("kind", string(ClassifyError(err))), zap.Error(err))
		return nil
	}

	wp, err := parser.ParseWorkplace(body)
	if err != nil {
		log.Error("Failed to decode workplace details", zap.Error(err))
		return nil
	}
	log.Debug("Fetched workplace", zap.String("id", string(wp.ID)), zap.String("name", wp.Name))

	if strings.TrimSpace(wp.Name) == "" {
		log.Warn("Workplace is missing a name. Skipping...")
		return nil
	}

	return &models.ReportEntry{
		Name:   wp.Name,
		Shifts: wc.Count,
	}
}

type progress struct {
	bar *progressbar.ProgressBar
}

func (a *App) newProgressBar(total int) progress {
	if !a.config.Output.ShowProgress || a.progress == nil {
		return progress{}
	}
	return progress{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(a.progress),
		progressbar.OptionSetDescription("Resolving workplaces..."),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))}
}

func (p progress) tick() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
