package core

// Alert classifications for budget spend ratios.
const (
	AlertWarning = "warning"
	AlertOver    = "over_budget"
)

// BudgetAlert is one emitted warning from the alert engine. Budgets below
// their threshold produce no alert at all.
type BudgetAlert struct {
	BudgetID     int64
	BudgetName   string
	CategoryName string // empty when the budget is not category-scoped
	BudgetAmount Money
	SpentAmount  Money
	Remaining    Money
	AlertType    string
}

// PeriodTotals are the income/expense/balance sums for one time interval.
type PeriodTotals struct {
	Income  Money
	Expense Money
	Balance Money
}

// CategoryStat is one group of the by-category breakdown. A nil CategoryID
// marks the uncategorized bucket for records whose category no longer
// resolves.
type CategoryStat struct {
	CategoryID   *int64
	CategoryName string
	Amount       Money
	Percentage   float64
}

// ProjectStat is one row of the by-project breakdown.
type ProjectStat struct {
	ProjectID   int64
	ProjectName string
	Income      Money
	Expense     Money
	Balance     Money
}

// Overview is the composite dashboard view: interval totals plus the top
// expense categories and projects. Percentages are intentionally not
// computed here.
type Overview struct {
	Totals        PeriodTotals
	TopCategories []CategoryStat
	TopProjects   []ProjectStat
}
