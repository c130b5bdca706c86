// Package export appends monthly ledger reports to a Google Sheets
// spreadsheet using service account credentials.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/core"
)

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *slog.Logger) (*SheetsExporter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsFile(credentialsFile),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.With(slog.String("component", "export")),
	}, nil
}

// AppendMonthlyReport appends one row for a user's month. Amounts land in the
// sheet as major units so the spreadsheet can format them as currency.
func (e *SheetsExporter) AppendMonthlyReport(ctx context.Context, userID int64, year, month int, totals core.PeriodTotals, topCategory string) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := monthlyReportRow(userID, year, month, totals, topCategory)
	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report row to %s: %w", e.sheetName, err)
	}

	e.logger.Info("monthly report exported",
		slog.Int64("user_id", userID),
		slog.Int("year", year),
		slog.Int("month", month))
	return nil
}

// monthlyReportRow lays the report out as
// [user, year, month, income, expense, balance, top category].
func monthlyReportRow(userID int64, year, month int, totals core.PeriodTotals, topCategory string) []any {
	return []any{
		userID,
		year,
		month,
		totals.Income.Units(),
		totals.Expense.Units(),
		totals.Balance.Units(),
		topCategory,
	}
}
