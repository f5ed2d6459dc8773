// Package export appends finance records to a Google Sheets audit feed.
// The sheet is write-only from the application's point of view; the store
// stays the source of truth.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"grana/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// RowAppender is what the worker needs from an exporter.
type RowAppender interface {
	AppendTransaction(ctx context.Context, op string, tx core.Transaction, categoryName string) (string, error)
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ RowAppender = (*Exporter)(nil)

// NewFromEnv creates an exporter using environment variables and service
// account credentials.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Transações").
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Transações"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsInline := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON"))
	credentialsFile := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE"))
	if credentialsInline == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case credentialsInline != "":
		credentialsJSON = []byte(credentialsInline)
	case credentialsFile != "":
		credentialsJSON, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// auditRow builds the spreadsheet row for one transaction change. Amounts
// use the localized currency notation so the sheet reads like a statement.
func auditRow(op string, tx core.Transaction, categoryName string) []any {
	label := ""
	if tx.InstallmentCount > 1 {
		label = fmt.Sprintf("%d/%d", tx.InstallmentIndex, tx.InstallmentCount)
	}
	return []any{
		tx.Date.ISO(),
		op,
		string(tx.Type),
		tx.Description,
		tx.Amount.FormatBRL(),
		categoryName,
		tx.CardID,
		label,
		tx.ID,
	}
}

// AppendTransaction appends one audit row for a transaction change and
// returns the updated range reference.
func (e *Exporter) AppendTransaction(ctx context.Context, op string, tx core.Transaction, categoryName string) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:I", e.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{auditRow(op, tx, categoryName)}}

	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Exported transaction row",
		"op", op,
		"record_id", tx.ID,
		"range", ref)

	return ref, nil
}
