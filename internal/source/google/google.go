// Package google reads expenses from a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendview/internal/core"
	"spendview/internal/source"
)

// valuesReader is the slice of the Sheets API the client needs.
type valuesReader interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
}

type serviceReader struct {
	svc *gsheet.Service
}

func (r serviceReader) Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Options selects the spreadsheet and sheets to read. An empty
// CategoriesSheet means the built-in category list is served.
type Options struct {
	SpreadsheetID   string
	ExpensesSheet   string
	CategoriesSheet string
}

type Client struct {
	values          valuesReader
	spreadsheetID   string
	expensesSheet   string
	categoriesSheet string
}

var _ source.Source = (*Client)(nil)

// New creates a Sheets client authenticated with a service account taken
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(serviceReader{svc: svc}, opts), nil
}

func newClient(r valuesReader, opts Options) *Client {
	expenses := strings.TrimSpace(opts.ExpensesSheet)
	if expenses == "" {
		expenses = "Expenses"
	}
	return &Client{
		values:          r,
		spreadsheetID:   strings.TrimSpace(opts.SpreadsheetID),
		expensesSheet:   expenses,
		categoriesSheet: strings.TrimSpace(opts.CategoriesSheet),
	}
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentialsJSON))
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// FetchExpenses reads the whole expenses sheet. The first row is the header;
// see parseExpenses for the recognised columns.
func (c *Client) FetchExpenses(ctx context.Context) ([]core.Expense, error) {
	rng := fmt.Sprintf("%s!A:H", c.expensesSheet)
	values, err := c.values.Values(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out, skipped, err := parseExpenses(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rng, err)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped sheet rows with unreadable dates", "sheet", c.expensesSheet, "skipped", skipped)
	}
	return out, nil
}

// FetchCategories reads id/name pairs from the categories sheet, or returns
// the built-in list when no sheet is configured.
func (c *Client) FetchCategories(ctx context.Context) ([]core.Category, error) {
	if c.categoriesSheet == "" {
		return core.DefaultCategories(), nil
	}
	rng := fmt.Sprintf("%s!A:B", c.categoriesSheet)
	values, err := c.values.Values(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseCategories(values), nil
}
