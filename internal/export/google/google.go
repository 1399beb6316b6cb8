// Package google exports expense data to a Google Sheets report spreadsheet
// using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"kharcha/internal/config"
	"kharcha/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	reportSheet   string
}

// New builds an exporter from the loaded configuration. Credentials come
// from the inline JSON when set, otherwise from the credentials file.
func New(ctx context.Context, cfg *config.Config) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(cfg.GoogleSpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.GoogleCredentialsJSON) != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case strings.TrimSpace(cfg.GoogleCredentialsFile) != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	reportSheet := cfg.GoogleReportSheet
	if reportSheet == "" {
		reportSheet = "Monthly"
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		reportSheet:   reportSheet,
	}, nil
}

// AppendExpenseRow appends a single expense to the report sheet. Rows are
// append-only; after a deletion the caller appends a fresh month overview
// instead of editing rows in place.
func (e *Exporter) AppendExpenseRow(ctx context.Context, rec core.ExpenseRecord) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	values := &gsheet.ValueRange{
		Values: [][]any{{
			rec.ID,
			rec.OwnerID,
			rec.Date,
			rec.Title,
			rec.AmountBase,
			string(rec.Category),
			rec.PaymentMethod,
		}},
	}

	rng := fmt.Sprintf("%s!A:G", e.reportSheet)
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append expense row: %w", err)
	}

	slog.InfoContext(ctx, "Appended expense row to report sheet",
		"expense_id", rec.ID,
		"owner_id", rec.OwnerID,
		"sheets_ref", e.spreadsheetID)
	return nil
}

// AppendMonthOverview appends an owner's month summary: the total followed
// by one column per category, in the fixed category order.
func (e *Exporter) AppendMonthOverview(ctx context.Context, ownerID, monthKey string, total float64, byCategory map[string]float64) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{ownerID, monthKey, total}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row = append(row, fmt.Sprintf("%s=%.2f", name, byCategory[name]))
	}

	rng := fmt.Sprintf("%s!A:Z", e.reportSheet)
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append month overview: %w", err)
	}

	slog.InfoContext(ctx, "Appended month overview to report sheet",
		"owner_id", ownerID,
		"month_key", monthKey,
		"total", total)
	return nil
}
