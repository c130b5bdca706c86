package http

import (
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

// Response shapes. Monetary amounts travel twice: formatted for display and
// as integer cents for clients that do their own arithmetic.

type userDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type invitationDTO struct {
	Code      string     `json:"code"`
	MaxUses   int        `json:"max_uses"`
	UsedCount int        `json:"used_count"`
	Active    bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type categoryDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Level     string `json:"level"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	System    bool   `json:"is_system"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	SortOrder int    `json:"sort_order"`
	Active    bool   `json:"is_active"`
}

type recordDTO struct {
	ID            int64     `json:"id"`
	CategoryID    int64     `json:"category_id"`
	Amount        string    `json:"amount"`
	AmountCents   int64     `json:"amount_cents"`
	Kind          string    `json:"kind"`
	Description   string    `json:"description,omitempty"`
	Date          string    `json:"date"`
	PayerCount    int       `json:"payer_count"`
	Split         bool      `json:"is_split"`
	PerShare      string    `json:"per_share"`
	PerShareCents int64     `json:"per_share_cents"`
	ProjectID     *int64    `json:"project_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type projectDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Budget      string    `json:"budget"`
	BudgetCents int64     `json:"budget_cents"`
	Status      string    `json:"status"`
	StartDate   *string   `json:"start_date,omitempty"`
	EndDate     *string   `json:"end_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type budgetDTO struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Amount         string  `json:"amount"`
	AmountCents    int64   `json:"amount_cents"`
	Period         string  `json:"period"`
	CategoryID     *int64  `json:"category_id,omitempty"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
	AlertThreshold int     `json:"alert_threshold"`
	Active         bool    `json:"is_active"`
}

type alertDTO struct {
	BudgetID     int64  `json:"budget_id"`
	BudgetName   string `json:"budget_name"`
	CategoryName string `json:"category_name,omitempty"`
	BudgetAmount string `json:"budget_amount"`
	SpentAmount  string `json:"spent_amount"`
	Remaining    string `json:"remaining"`
	AlertType    string `json:"alert_type"`
}

type totalsDTO struct {
	Income       string `json:"income"`
	Expense      string `json:"expense"`
	Balance      string `json:"balance"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	BalanceCents int64  `json:"balance_cents"`
}

type categoryStatDTO struct {
	CategoryID   *int64  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Amount       string  `json:"amount"`
	AmountCents  int64   `json:"amount_cents"`
	Percentage   float64 `json:"percentage"`
}

type projectStatDTO struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	Income      string `json:"income"`
	Expense     string `json:"expense"`
	Balance     string `json:"balance"`
}

type overviewDTO struct {
	Totals        totalsDTO         `json:"totals"`
	TopCategories []categoryStatDTO `json:"top_categories"`
	TopProjects   []projectStatDTO  `json:"top_projects"`
}

type listDTO[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func toUserDTO(u *core.User) userDTO {
	return userDTO{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toInvitationDTO(i core.Invitation) invitationDTO {
	return invitationDTO{
		Code:      i.Code,
		MaxUses:   i.MaxUses,
		UsedCount: i.UsedCount,
		Active:    i.Active,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      string(c.Kind),
		Level:     string(c.Level),
		ParentID:  c.ParentID,
		System:    c.System,
		Icon:      c.Icon,
		Color:     c.Color,
		SortOrder: c.SortOrder,
		Active:    c.Active,
	}
}

func toCategoryDTOs(cats []core.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryDTO(c))
	}
	return out
}

func toRecordDTO(r *core.Record) recordDTO {
	return recordDTO{
		ID:            r.ID,
		CategoryID:    r.CategoryID,
		Amount:        r.Amount.String(),
		AmountCents:   r.Amount.Cents,
		Kind:          string(r.Kind),
		Description:   r.Description,
		Date:          r.Date.Format("2006-01-02"),
		PayerCount:    r.PayerCount,
		Split:         r.Split,
		PerShare:      r.PerShare.String(),
		PerShareCents: r.PerShare.Cents,
		ProjectID:     r.ProjectID,
		CreatedAt:     r.CreatedAt,
	}
}

func toProjectDTO(p *core.Project) projectDTO {
	return projectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Budget:      p.Budget.String(),
		BudgetCents: p.Budget.Cents,
		Status:      p.Status,
		StartDate:   dateString(p.StartDate),
		EndDate:     dateString(p.EndDate),
		CreatedAt:   p.CreatedAt,
	}
}

func toBudgetDTO(b *core.Budget) budgetDTO {
	return budgetDTO{
		ID:             b.ID,
		Name:           b.Name,
		Amount:         b.Amount.String(),
		AmountCents:    b.Amount.Cents,
		Period:         string(b.Period),
		CategoryID:     b.CategoryID,
		StartDate:      b.StartDate.Format("2006-01-02"),
		EndDate:        dateString(b.EndDate),
		AlertThreshold: b.Threshold(),
		Active:         b.Active,
	}
}

func toAlertDTO(a core.BudgetAlert) alertDTO {
	return alertDTO{
		BudgetID:     a.BudgetID,
		BudgetName:   a.BudgetName,
		CategoryName: a.CategoryName,
		BudgetAmount: a.BudgetAmount.String(),
		SpentAmount:  a.SpentAmount.String(),
		Remaining:    a.Remaining.String(),
		AlertType:    a.AlertType,
	}
}

func toTotalsDTO(t core.PeriodTotals) totalsDTO {
	return totalsDTO{
		Income:       t.Income.String(),
		Expense:      t.Expense.String(),
		Balance:      t.Balance.String(),
		IncomeCents:  t.Income.Cents,
		ExpenseCents: t.Expense.Cents,
		BalanceCents: t.Balance.Cents,
	}
}

func toCategoryStatDTOs(stats []core.CategoryStat) []categoryStatDTO {
	out := make([]categoryStatDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, categoryStatDTO{
			CategoryID:   s.CategoryID,
			CategoryName: s.CategoryName,
			Amount:       s.Amount.String(),
			AmountCents:  s.Amount.Cents,
			Percentage:   s.Percentage,
		})
	}
	return out
}

func toProjectStatDTOs(stats []core.ProjectStat) []projectStatDTO {
	out := make([]projectStatDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, projectStatDTO{
			ProjectID:   s.ProjectID,
			ProjectName: s.ProjectName,
			Income:      s.Income.String(),
			Expense:     s.Expense.String(),
			Balance:     s.Balance.String(),
		})
	}
	return out
}

type projectStatsDTO struct {
	Project projectDTO `json:"project"`
	Income  string     `json:"income"`
	Expense string     `json:"expense"`
	Balance string     `json:"balance"`
}

func toProjectStatsDTO(st *services.ProjectStats) projectStatsDTO {
	return projectStatsDTO{
		Project: toProjectDTO(st.Project),
		Income:  st.Income.String(),
		Expense: st.Expense.String(),
		Balance: st.Balance.String(),
	}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
