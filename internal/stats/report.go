package stats

import (
	"context"
	"io"
	"time"

	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/store"
)

// ReportConfig controls report size.
type ReportConfig struct {
	Top  int
	Days int
	Now  time.Time
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Summary  Summary
	Lookups  []model.LookupCount
	Activity []float64
}

// BuildReport summarizes d and loads lookup history from st.
func BuildReport(ctx context.Context, st *store.Store, d model.Dictionary, cfg ReportConfig) (Report, error) {
	counts, err := st.CountLookups(ctx)
	if err != nil {
		return Report{}, err
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	var activity []float64
	if cfg.Days > 0 {
		since := startOfDay(now).AddDate(0, 0, -(cfg.Days - 1))
		lookups, err := st.ListLookups(ctx, model.HistoryConfig{Since: &since})
		if err != nil {
			return Report{}, err
		}
		activity = DailyCounts(lookups, cfg.Days, now)
	}
	return Report{
		Summary:  Summarize(d, cfg.Top),
		Lookups:  counts,
		Activity: activity,
	}, nil
}

// Render prints the whole report.
func (r Report) Render(w io.Writer) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if err := RenderLookupCounts(w, r.Lookups); err != nil {
		return err
	}
	return RenderActivity(w, r.Activity)
}
