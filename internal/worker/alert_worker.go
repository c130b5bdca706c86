// Package worker runs the periodic background jobs: budget alert evaluation
// with AMQP publishing, and session pruning.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
)

type (
	// AlertEvaluator computes the current alerts for one user.
	AlertEvaluator interface {
		EvaluateAlerts(ctx context.Context, ownerID int64, now time.Time) ([]core.BudgetAlert, error)
	}

	// OwnerLister enumerates users with at least one active budget.
	OwnerLister interface {
		ListBudgetOwners(ctx context.Context) ([]int64, error)
	}

	// AlertPublisher pushes one alert message to the broker.
	AlertPublisher interface {
		PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
	}

	// SessionPruner drops expired sessions.
	SessionPruner interface {
		PruneSessions(ctx context.Context) (int64, error)
	}
)

type AlertWorker struct {
	evaluator AlertEvaluator
	owners    OwnerLister
	publisher AlertPublisher
	sessions  SessionPruner
	logger    *slog.Logger

	alertInterval time.Duration
	pruneInterval time.Duration
	now           func() time.Time

	// sent remembers the last published tier per budget so a budget that
	// stays over its threshold does not alert on every tick.
	sent map[int64]string
}

func NewAlertWorker(evaluator AlertEvaluator, owners OwnerLister, publisher AlertPublisher, sessions SessionPruner, alertInterval, pruneInterval time.Duration, logger *slog.Logger) *AlertWorker {
	return &AlertWorker{
		evaluator:     evaluator,
		owners:        owners,
		publisher:     publisher,
		sessions:      sessions,
		logger:        logger.With(slog.String("component", "worker")),
		alertInterval: alertInterval,
		pruneInterval: pruneInterval,
		now:           time.Now,
		sent:          make(map[int64]string),
	}
}

// Run drives both loops until the context is cancelled.
func (w *AlertWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(w.alertInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.EvaluateOnce(ctx); err != nil {
					w.logger.Error("alert evaluation failed", slog.Any("error", err))
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				n, err := w.sessions.PruneSessions(ctx)
				if err != nil {
					w.logger.Error("session prune failed", slog.Any("error", err))
					continue
				}
				if n > 0 {
					w.logger.Info("pruned sessions", slog.Int64("count", n))
				}
			}
		}
	})

	return g.Wait()
}

// EvaluateOnce runs one full evaluation pass over every budget owner and
// publishes the alerts that changed tier since the last pass.
func (w *AlertWorker) EvaluateOnce(ctx context.Context) error {
	owners, err := w.owners.ListBudgetOwners(ctx)
	if err != nil {
		return fmt.Errorf("list budget owners: %w", err)
	}

	now := w.now()
	current := make(map[int64]string)
	var published int
	for _, ownerID := range owners {
		alerts, err := w.evaluator.EvaluateAlerts(ctx, ownerID, now)
		if err != nil {
			w.logger.Error("evaluate alerts",
				slog.Int64("user_id", ownerID),
				slog.Any("error", err))
			continue
		}
		for _, alert := range alerts {
			current[alert.BudgetID] = alert.AlertType
			if w.sent[alert.BudgetID] == alert.AlertType {
				continue
			}
			msg := amqp.NewBudgetAlertMessage(ownerID, alert)
			if err := w.publisher.PublishBudgetAlert(ctx, msg); err != nil {
				w.logger.Error("publish alert",
					slog.Int64("budget_id", alert.BudgetID),
					slog.Any("error", err))
				// Not marked as sent; the next pass retries.
				delete(current, alert.BudgetID)
				continue
			}
			published++
		}
	}
	w.sent = current

	w.logger.Info("alert pass completed",
		slog.Int("owners", len(owners)),
		slog.Int("published", published))
	return nil
}
