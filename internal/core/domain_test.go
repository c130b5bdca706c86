package core

import (
	"errors"
	"testing"
	"time"
)

func TestRecordValidate(t *testing.T) {
	valid := Record{
		OwnerID:    1,
		CategoryID: 2,
		Amount:     Money{Cents: 1500},
		Kind:       Expense,
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		PayerCount: 1,
	}

	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr error
	}{
		{name: "valid", mutate: func(r *Record) {}},
		{name: "zero amount", mutate: func(r *Record) { r.Amount.Cents = 0 }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(r *Record) { r.Amount.Cents = -100 }, wantErr: ErrInvalidAmount},
		{name: "bad kind", mutate: func(r *Record) { r.Kind = "transfer" }, wantErr: ErrInvalidKind},
		{name: "zero payer count", mutate: func(r *Record) { r.PayerCount = 0 }, wantErr: ErrInvalidPayerCount},
		{name: "zero date", mutate: func(r *Record) { r.Date = time.Time{} }, wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordComputePerShare(t *testing.T) {
	tests := []struct {
		name       string
		cents      int64
		payerCount int
		split      bool
		want       int64
	}{
		{name: "split three ways", cents: 30000, payerCount: 3, split: true, want: 10000},
		{name: "split disabled identity", cents: 10000, payerCount: 1, split: false, want: 10000},
		{name: "split disabled ignores payer count", cents: 9000, payerCount: 3, split: false, want: 9000},
		{name: "uneven split rounds half up", cents: 1001, payerCount: 2, split: true, want: 501},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{Amount: Money{Cents: tt.cents}, PayerCount: tt.payerCount, Split: tt.split}
			if got := r.ComputePerShare(); got.Cents != tt.want {
				t.Errorf("ComputePerShare() = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	parent := int64(7)

	tests := []struct {
		name    string
		cat     Category
		wantErr error
	}{
		{
			name: "valid primary",
			cat:  Category{Name: "Food", Kind: Expense, Level: LevelPrimary},
		},
		{
			name: "valid secondary",
			cat:  Category{Name: "Groceries", Kind: Expense, Level: LevelSecondary, ParentID: &parent},
		},
		{
			name:    "primary with parent",
			cat:     Category{Name: "Food", Kind: Expense, Level: LevelPrimary, ParentID: &parent},
			wantErr: ErrInvalidParent,
		},
		{
			name:    "secondary without parent",
			cat:     Category{Name: "Groceries", Kind: Expense, Level: LevelSecondary},
			wantErr: ErrInvalidParent,
		},
		{
			name:    "empty name",
			cat:     Category{Name: "  ", Kind: Expense, Level: LevelPrimary},
			wantErr: ErrInvalidCategoryName,
		},
		{
			name:    "bad kind",
			cat:     Category{Name: "Food", Kind: "saving", Level: LevelPrimary},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "bad level",
			cat:     Category{Name: "Food", Kind: Expense, Level: "tertiary"},
			wantErr: ErrInvalidLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cat.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvitationCanUse(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		inv  Invitation
		want bool
	}{
		{name: "fresh", inv: Invitation{Active: true, MaxUses: 1}, want: true},
		{name: "inactive", inv: Invitation{Active: false, MaxUses: 1}, want: false},
		{name: "expired", inv: Invitation{Active: true, MaxUses: 1, ExpiresAt: &past}, want: false},
		{name: "not yet expired", inv: Invitation{Active: true, MaxUses: 1, ExpiresAt: &future}, want: true},
		{name: "exhausted", inv: Invitation{Active: true, MaxUses: 3, UsedCount: 3}, want: false},
		{name: "one slot left", inv: Invitation{Active: true, MaxUses: 3, UsedCount: 2}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.CanUse(now); got != tt.want {
				t.Errorf("CanUse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBudgetThreshold(t *testing.T) {
	if got := (Budget{}).Threshold(); got != DefaultAlertThreshold {
		t.Errorf("default threshold = %d, want %d", got, DefaultAlertThreshold)
	}
	if got := (Budget{AlertThreshold: 60}).Threshold(); got != 60 {
		t.Errorf("explicit threshold = %d, want 60", got)
	}
	// 0 means unset, not "warn at 0%": it selects the default.
	if got := (Budget{AlertThreshold: 0}).Threshold(); got != DefaultAlertThreshold {
		t.Errorf("zero threshold = %d, want %d", got, DefaultAlertThreshold)
	}
	if got := (Budget{AlertThreshold: 100}).Threshold(); got != 100 {
		t.Errorf("threshold 100 = %d, want 100", got)
	}
}

func TestBudgetValidate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-24 * time.Hour)

	tests := []struct {
		name    string
		budget  Budget
		wantErr error
	}{
		{
			name:   "valid",
			budget: Budget{Name: "Monthly food", Amount: Money{Cents: 100000}, Period: PeriodMonthly, StartDate: start},
		},
		{
			name:    "zero amount",
			budget:  Budget{Name: "b", Amount: Money{}, Period: PeriodMonthly, StartDate: start},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "bad period",
			budget:  Budget{Name: "b", Amount: Money{Cents: 1}, Period: "weekly", StartDate: start},
			wantErr: ErrInvalidPeriod,
		},
		{
			name:    "end before start",
			budget:  Budget{Name: "b", Amount: Money{Cents: 1}, Period: PeriodYearly, StartDate: start, EndDate: &before},
			wantErr: ErrInvalidRange,
		},
		{
			name:    "threshold out of range",
			budget:  Budget{Name: "b", Amount: Money{Cents: 1}, Period: PeriodMonthly, StartDate: start, AlertThreshold: 150},
			wantErr: ErrInvalidThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.budget.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
