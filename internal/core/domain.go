package core

import (
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	LevelPrimary   CategoryLevel = "primary"
	LevelSecondary CategoryLevel = "secondary"
)

const (
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

// DefaultAlertThreshold is the budget warning threshold in percent used when
// a budget does not set its own.
const DefaultAlertThreshold = 80

type (
	Kind          string
	CategoryLevel string
	BudgetPeriod  string

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		Active       bool
		CreatedAt    time.Time
	}

	// Invitation gates registration. used_count only moves through the
	// atomic consume operation; rows are never deleted.
	Invitation struct {
		ID        int64
		Code      string
		IssuedBy  int64
		MaxUses   int
		UsedCount int
		Active    bool
		ExpiresAt *time.Time
		CreatedAt time.Time
	}

	// Category is one node of the two-level taxonomy. System presets have
	// System=true and no owner. Deactivation is a soft delete: historical
	// records keep resolving against inactive categories.
	Category struct {
		ID        int64
		Name      string
		Kind      Kind
		Level     CategoryLevel
		ParentID  *int64
		OwnerID   int64
		System    bool
		Icon      string
		Color     string
		SortOrder int
		Active    bool
	}

	// Record is a single ledger entry. PerShare is derived: amount divided
	// across PayerCount when Split is on, the full amount otherwise.
	Record struct {
		ID          int64
		OwnerID     int64
		CategoryID  int64
		Amount      Money
		Kind        Kind
		Description string
		Date        time.Time
		PayerCount  int
		Split       bool
		PerShare    Money
		ProjectID   *int64
		CreatedAt   time.Time
	}

	Project struct {
		ID          int64
		OwnerID     int64
		CreatedBy   int64
		Name        string
		Description string
		Budget      Money
		Status      string
		StartDate   *time.Time
		EndDate     *time.Time
		CreatedAt   time.Time
	}

	Budget struct {
		ID             int64
		OwnerID        int64
		CategoryID     *int64
		Name           string
		Amount         Money
		Period         BudgetPeriod
		StartDate      time.Time
		EndDate        *time.Time
		AlertThreshold int // percent, 0 means DefaultAlertThreshold
		Active         bool
	}
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// CanUse reports whether the invitation would admit one more user at the
// given instant. The authoritative check is the conditional update in the
// store; this is for display and error classification only.
func (i Invitation) CanUse(now time.Time) bool {
	if !i.Active {
		return false
	}
	if i.ExpiresAt != nil && now.After(*i.ExpiresAt) {
		return false
	}
	return i.UsedCount < i.MaxUses
}

// Expired reports whether the invitation's expiry has passed.
func (i Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" || len(c.Name) > 50 {
		return ErrInvalidCategoryName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	switch c.Level {
	case LevelPrimary:
		if c.ParentID != nil {
			return ErrInvalidParent
		}
	case LevelSecondary:
		if c.ParentID == nil {
			return ErrInvalidParent
		}
	default:
		return ErrInvalidLevel
	}
	return nil
}

func (r Record) Validate() error {
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if r.PayerCount < 1 {
		return ErrInvalidPayerCount
	}
	if len(r.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ComputePerShare returns the derived per-payer amount for the record.
func (r Record) ComputePerShare() Money {
	if r.Split && r.PayerCount > 0 {
		return SplitShare(r.Amount, r.PayerCount)
	}
	return r.Amount
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" || len(b.Name) > 100 {
		return ErrInvalidBudgetName
	}
	// Zero-amount budgets are allowed: they flag any spending at all.
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if b.StartDate.IsZero() {
		return ErrInvalidDate
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return ErrInvalidRange
	}
	// 0 is reserved for "unset" and selects DefaultAlertThreshold; a budget
	// that should flag any spending at all is a zero-amount budget instead.
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return ErrInvalidThreshold
	}
	return nil
}

// Threshold returns the effective warning threshold in percent. An unset
// (zero) AlertThreshold falls back to DefaultAlertThreshold.
func (b Budget) Threshold() int {
	if b.AlertThreshold == 0 {
		return DefaultAlertThreshold
	}
	return b.AlertThreshold
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" || len(p.Name) > 100 {
		return ErrInvalidProjectName
	}
	if len(p.Description) > 500 {
		return ErrDescriptionTooLong
	}
	switch p.Status {
	case "", ProjectActive, ProjectCompleted, ProjectArchived:
	default:
		return ErrInvalidStatus
	}
	return nil
}
