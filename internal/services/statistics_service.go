package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"bilancio/internal/core"
)

type StatisticsService struct {
	records    RecordStore
	categories CategoryStore
	projects   ProjectStore
	log        *slog.Logger
	now        func() time.Time
}

func NewStatisticsService(records RecordStore, categories CategoryStore, projects ProjectStore, logger *slog.Logger) *StatisticsService {
	return &StatisticsService{
		records:    records,
		categories: categories,
		projects:   projects,
		log:        logger.With(slog.String("component", "statistics_service")),
		now:        time.Now,
	}
}

// MonthInterval returns the closed interval covering one calendar month in
// UTC: the first instant of the month through one second before the next.
func MonthInterval(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, core.ErrInvalidMonth
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)
	return from, to, nil
}

// Monthly sums one calendar month of the owner's ledger.
func (s *StatisticsService) Monthly(ctx context.Context, ownerID int64, year, month int) (*core.PeriodTotals, error) {
	from, to, err := MonthInterval(year, month)
	if err != nil {
		return nil, err
	}
	return s.totals(ctx, ownerID, from, to)
}

// Range sums an arbitrary closed interval of the owner's ledger.
func (s *StatisticsService) Range(ctx context.Context, ownerID int64, from, to time.Time) (*core.PeriodTotals, error) {
	if from.After(to) {
		return nil, core.ErrInvalidRange
	}
	return s.totals(ctx, ownerID, from, to)
}

func (s *StatisticsService) totals(ctx context.Context, ownerID int64, from, to time.Time) (*core.PeriodTotals, error) {
	records, err := s.records.ListRecords(ctx, core.RecordQuery{
		OwnerID: ownerID,
		From:    &from,
		To:      &to,
	})
	if err != nil {
		return nil, err
	}
	t := sumTotals(records)
	return &t, nil
}

// ByCategory groups one kind of record by category over the interval and
// attaches each group's share of the total as a percentage with two
// decimals. Records whose category no longer resolves land in an
// uncategorized bucket instead of being dropped.
func (s *StatisticsService) ByCategory(ctx context.Context, ownerID int64, kind core.Kind, from, to time.Time) ([]core.CategoryStat, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	if from.After(to) {
		return nil, core.ErrInvalidRange
	}
	records, err := s.records.ListRecords(ctx, core.RecordQuery{
		OwnerID: ownerID,
		Kind:    kind,
		From:    &from,
		To:      &to,
	})
	if err != nil {
		return nil, err
	}

	stats, total, err := s.groupByCategory(ctx, records)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		if total > 0 {
			pct := float64(stats[i].Amount.Cents) / float64(total) * 100
			stats[i].Percentage = math.Round(pct*100) / 100
		}
	}
	return stats, nil
}

func (s *StatisticsService) groupByCategory(ctx context.Context, records []core.Record) ([]core.CategoryStat, int64, error) {
	sums := make(map[int64]int64)
	names := make(map[int64]string)
	unresolved := make(map[int64]bool)
	var uncategorized int64
	var hasUncategorized bool

	for _, r := range records {
		if unresolved[r.CategoryID] {
			uncategorized += r.Amount.Cents
			continue
		}
		if _, seen := names[r.CategoryID]; !seen {
			c, err := s.categories.GetCategory(ctx, r.CategoryID)
			switch {
			case errors.Is(err, core.ErrNotFound):
				unresolved[r.CategoryID] = true
				uncategorized += r.Amount.Cents
				hasUncategorized = true
				continue
			case err != nil:
				return nil, 0, err
			}
			names[r.CategoryID] = c.Name
		}
		sums[r.CategoryID] += r.Amount.Cents
	}

	var total int64
	stats := make([]core.CategoryStat, 0, len(sums)+1)
	for id, cents := range sums {
		id := id
		stats = append(stats, core.CategoryStat{
			CategoryID:   &id,
			CategoryName: names[id],
			Amount:       core.Money{Cents: cents},
		})
		total += cents
	}
	if hasUncategorized {
		stats = append(stats, core.CategoryStat{
			CategoryName: "Uncategorized",
			Amount:       core.Money{Cents: uncategorized},
		})
		total += uncategorized
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Amount.Cents != stats[j].Amount.Cents {
			return stats[i].Amount.Cents > stats[j].Amount.Cents
		}
		return stats[i].CategoryName < stats[j].CategoryName
	})
	return stats, total, nil
}

// ByProject sums every project the user owns or created, over the project's
// whole lifetime, ordered by name.
func (s *StatisticsService) ByProject(ctx context.Context, userID int64) ([]core.ProjectStat, error) {
	projects, err := s.projects.ListProjectsTouchedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := make([]core.ProjectStat, 0, len(projects))
	for _, p := range projects {
		records, err := s.records.ListProjectRecords(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		t := sumTotals(records)
		stats = append(stats, core.ProjectStat{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Income:      t.Income,
			Expense:     t.Expense,
			Balance:     t.Balance,
		})
	}
	return stats, nil
}

const overviewTopN = 5

// Overview builds the dashboard summary for an interval, defaulting to the
// current calendar month. Top categories carry no percentages and top
// projects count only in-range expense spending.
func (s *StatisticsService) Overview(ctx context.Context, ownerID int64, from, to *time.Time) (*core.Overview, error) {
	if from == nil || to == nil {
		now := s.now().UTC()
		f, t, _ := MonthInterval(now.Year(), int(now.Month()))
		if from == nil {
			from = &f
		}
		if to == nil {
			to = &t
		}
	}
	if from.After(*to) {
		return nil, core.ErrInvalidRange
	}

	totals, err := s.totals(ctx, ownerID, *from, *to)
	if err != nil {
		return nil, err
	}

	expenses, err := s.records.ListRecords(ctx, core.RecordQuery{
		OwnerID: ownerID,
		Kind:    core.Expense,
		From:    from,
		To:      to,
	})
	if err != nil {
		return nil, err
	}
	topCategories, _, err := s.groupByCategory(ctx, expenses)
	if err != nil {
		return nil, err
	}
	if len(topCategories) > overviewTopN {
		topCategories = topCategories[:overviewTopN]
	}

	topProjects := topProjectsByExpense(expenses)

	ov := &core.Overview{
		Totals:        *totals,
		TopCategories: topCategories,
		TopProjects:   topProjects,
	}
	s.fillProjectNames(ctx, ownerID, ov.TopProjects)
	return ov, nil
}

// topProjectsByExpense ranks the projects present in the expense slice by
// spending, keeping only projects with in-range expenses.
func topProjectsByExpense(expenses []core.Record) []core.ProjectStat {
	sums := make(map[int64]int64)
	for _, r := range expenses {
		if r.ProjectID != nil {
			sums[*r.ProjectID] += r.Amount.Cents
		}
	}
	stats := make([]core.ProjectStat, 0, len(sums))
	for id, cents := range sums {
		if cents <= 0 {
			continue
		}
		stats = append(stats, core.ProjectStat{
			ProjectID: id,
			Expense:   core.Money{Cents: cents},
			Balance:   core.Money{Cents: -cents},
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Expense.Cents != stats[j].Expense.Cents {
			return stats[i].Expense.Cents > stats[j].Expense.Cents
		}
		return stats[i].ProjectID < stats[j].ProjectID
	})
	if len(stats) > overviewTopN {
		stats = stats[:overviewTopN]
	}
	return stats
}

func (s *StatisticsService) fillProjectNames(ctx context.Context, ownerID int64, stats []core.ProjectStat) {
	for i := range stats {
		p, err := s.projects.GetProject(ctx, stats[i].ProjectID, ownerID)
		if err != nil {
			continue
		}
		stats[i].ProjectName = p.Name
	}
}

func sumTotals(records []core.Record) core.PeriodTotals {
	var t core.PeriodTotals
	for _, r := range records {
		switch r.Kind {
		case core.Income:
			t.Income.Cents += r.Amount.Cents
		case core.Expense:
			t.Expense.Cents += r.Amount.Cents
		}
	}
	t.Balance.Cents = t.Income.Cents - t.Expense.Cents
	return t
}
