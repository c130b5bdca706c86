package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
)

type BudgetService struct {
	budgets    BudgetStore
	records    RecordStore
	categories CategoryStore
	log        *slog.Logger
}

func NewBudgetService(budgets BudgetStore, records RecordStore, categories CategoryStore, logger *slog.Logger) *BudgetService {
	return &BudgetService{
		budgets:    budgets,
		records:    records,
		categories: categories,
		log:        logger.With(slog.String("component", "budget_service")),
	}
}

type BudgetInput struct {
	Name           string
	Amount         core.Money
	Period         core.BudgetPeriod
	CategoryID     *int64
	StartDate      time.Time
	EndDate        *time.Time
	AlertThreshold int
}

func (s *BudgetService) Create(ctx context.Context, ownerID int64, in BudgetInput) (*core.Budget, error) {
	b := &core.Budget{
		OwnerID:        ownerID,
		CategoryID:     in.CategoryID,
		Name:           in.Name,
		Amount:         in.Amount,
		Period:         in.Period,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		AlertThreshold: in.AlertThreshold,
		Active:         true,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.CategoryID != nil {
		if err := s.checkCategory(ctx, ownerID, *b.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.budgets.CreateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	s.log.Info("budget created",
		slog.Int64("budget_id", b.ID),
		slog.Int64("amount_cents", b.Amount.Cents))
	return b, nil
}

type BudgetPatch struct {
	Name           *string
	Amount         *core.Money
	Period         *core.BudgetPeriod
	CategoryID     **int64
	StartDate      *time.Time
	EndDate        **time.Time
	AlertThreshold *int
	Active         *bool
}

func (s *BudgetService) Update(ctx context.Context, ownerID, id int64, patch BudgetPatch) (*core.Budget, error) {
	b, err := s.budgets.GetBudget(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Amount != nil {
		b.Amount = *patch.Amount
	}
	if patch.Period != nil {
		b.Period = *patch.Period
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID != nil {
			if err := s.checkCategory(ctx, ownerID, **patch.CategoryID); err != nil {
				return nil, err
			}
		}
		b.CategoryID = *patch.CategoryID
	}
	if patch.StartDate != nil {
		b.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		b.EndDate = *patch.EndDate
	}
	if patch.AlertThreshold != nil {
		b.AlertThreshold = *patch.AlertThreshold
	}
	if patch.Active != nil {
		b.Active = *patch.Active
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.budgets.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.budgets.DeleteBudget(ctx, id, ownerID); err != nil {
		return err
	}
	s.log.Info("budget deleted", slog.Int64("budget_id", id))
	return nil
}

func (s *BudgetService) Get(ctx context.Context, ownerID, id int64) (*core.Budget, error) {
	return s.budgets.GetBudget(ctx, id, ownerID)
}

func (s *BudgetService) List(ctx context.Context, ownerID int64, limit, offset int) ([]core.Budget, int64, error) {
	budgets, err := s.budgets.ListBudgets(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.budgets.CountBudgets(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	return budgets, total, nil
}

// EvaluateAlerts inspects every active budget for the owner and returns one
// alert per budget that crossed its warning threshold or its full amount.
// Budgets below the threshold contribute nothing. An ended budget keeps
// alerting on its in-window spending until it is deactivated. All comparisons
// run on integer cents; the threshold check cross-multiplies instead of
// dividing.
func (s *BudgetService) EvaluateAlerts(ctx context.Context, ownerID int64, now time.Time) ([]core.BudgetAlert, error) {
	budgets, err := s.budgets.ListActiveBudgets(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var alerts []core.BudgetAlert
	for _, b := range budgets {
		spent, err := s.spentAgainst(ctx, &b)
		if err != nil {
			return nil, err
		}
		alert, ok := classifyBudget(&b, spent)
		if !ok {
			continue
		}
		if b.CategoryID != nil {
			c, err := s.categories.GetCategory(ctx, *b.CategoryID)
			if err == nil {
				alert.CategoryName = c.Name
			}
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// spentAgainst sums the owner's expense records inside the budget window,
// narrowed to the budget's category when it has one.
func (s *BudgetService) spentAgainst(ctx context.Context, b *core.Budget) (core.Money, error) {
	from := b.StartDate
	q := core.RecordQuery{
		OwnerID:    b.OwnerID,
		Kind:       core.Expense,
		CategoryID: b.CategoryID,
		From:       &from,
	}
	if b.EndDate != nil {
		q.To = b.EndDate
	}
	records, err := s.records.ListRecords(ctx, q)
	if err != nil {
		return core.Money{}, err
	}
	var spent core.Money
	for _, r := range records {
		spent.Cents += r.Amount.Cents
	}
	return spent, nil
}

// classifyBudget decides the alert tier for one budget. A zero-amount budget
// is over as soon as anything is spent and never merely warns.
func classifyBudget(b *core.Budget, spent core.Money) (core.BudgetAlert, bool) {
	over := spent.Cents >= b.Amount.Cents && !(b.Amount.Cents == 0 && spent.Cents == 0)
	warning := !over &&
		b.Amount.Cents > 0 &&
		spent.Cents*100 >= b.Amount.Cents*int64(b.Threshold())

	if !over && !warning {
		return core.BudgetAlert{}, false
	}
	alert := core.BudgetAlert{
		BudgetID:     b.ID,
		BudgetName:   b.Name,
		BudgetAmount: b.Amount,
		SpentAmount:  spent,
		Remaining:    core.Money{Cents: b.Amount.Cents - spent.Cents},
		AlertType:    core.AlertWarning,
	}
	if over {
		alert.AlertType = core.AlertOver
	}
	return alert, true
}

func (s *BudgetService) checkCategory(ctx context.Context, ownerID, categoryID int64) error {
	c, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if !c.System && (c.OwnerID != ownerID || !c.Active) {
		return core.ErrNotFound
	}
	return nil
}
