package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type (
	// StatsSource computes the monthly figures that go into a report row.
	StatsSource interface {
		Monthly(ctx context.Context, ownerID int64, year, month int) (*core.PeriodTotals, error)
		ByCategory(ctx context.Context, ownerID int64, kind core.Kind, from, to time.Time) ([]core.CategoryStat, error)
	}

	// ReportSink receives one finished monthly report row per user.
	ReportSink interface {
		AppendMonthlyReport(ctx context.Context, userID int64, year, month int, totals core.PeriodTotals, topCategory string) error
	}
)

// ReportWorker exports last month's figures once the calendar rolls over.
// It checks daily; the export itself runs once per month per user.
type ReportWorker struct {
	stats  StatsSource
	owners OwnerLister
	sink   ReportSink
	logger *slog.Logger
	now    func() time.Time

	lastExported string // "2026-01" style marker of the last month exported
}

const reportCheckInterval = 24 * time.Hour

func NewReportWorker(stats StatsSource, owners OwnerLister, sink ReportSink, logger *slog.Logger) *ReportWorker {
	return &ReportWorker{
		stats:  stats,
		owners: owners,
		sink:   sink,
		logger: logger.With(slog.String("component", "worker")),
		now:    time.Now,
	}
}

// Run wakes up daily and exports the previous month on the first pass of
// each new month. The first wake-up after startup exports immediately so a
// worker restarted mid-month does not skip a report.
func (w *ReportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(reportCheckInterval)
	defer ticker.Stop()

	if err := w.ExportDue(ctx); err != nil {
		w.logger.Error("report export failed", slog.Any("error", err))
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportDue(ctx); err != nil {
				w.logger.Error("report export failed", slog.Any("error", err))
			}
		}
	}
}

// ExportDue exports the previous calendar month unless it already has.
func (w *ReportWorker) ExportDue(ctx context.Context) error {
	now := w.now().UTC()
	prev := now.AddDate(0, -1, -now.Day()+1)
	marker := prev.Format("2006-01")
	if w.lastExported == marker {
		return nil
	}

	year, month := prev.Year(), int(prev.Month())
	if err := w.exportMonth(ctx, year, month); err != nil {
		return err
	}
	w.lastExported = marker
	return nil
}

func (w *ReportWorker) exportMonth(ctx context.Context, year, month int) error {
	owners, err := w.owners.ListBudgetOwners(ctx)
	if err != nil {
		return fmt.Errorf("list budget owners: %w", err)
	}
	from, to, err := services.MonthInterval(year, month)
	if err != nil {
		return err
	}

	var exported int
	for _, ownerID := range owners {
		totals, err := w.stats.Monthly(ctx, ownerID, year, month)
		if err != nil {
			w.logger.Error("monthly totals",
				slog.Int64("user_id", ownerID),
				slog.Any("error", err))
			continue
		}
		topCategory := ""
		stats, err := w.stats.ByCategory(ctx, ownerID, core.Expense, from, to)
		if err == nil && len(stats) > 0 {
			topCategory = stats[0].CategoryName
		}
		if err := w.sink.AppendMonthlyReport(ctx, ownerID, year, month, *totals, topCategory); err != nil {
			w.logger.Error("append report",
				slog.Int64("user_id", ownerID),
				slog.Any("error", err))
			continue
		}
		exported++
	}

	w.logger.Info("monthly reports exported",
		slog.Int("year", year),
		slog.Int("month", month),
		slog.Int("exported", exported))
	return nil
}
