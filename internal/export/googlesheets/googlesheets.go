// Package googlesheets appends monthly reports to a Google
// spreadsheet. Authentication uses an OAuth client plus a stored
// token; cmd/oauth-init produces the token file.
package googlesheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/core"
	"bilancio/internal/export"
)

// Config carries the spreadsheet target and OAuth material. Inline
// JSON wins over file paths when both are set.
type Config struct {
	SpreadsheetID string
	SheetName     string
	ClientJSON    string
	ClientFile    string
	TokenJSON     string
	TokenFile     string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ export.Sink = (*Client)(nil)

// jsonUnmarshal is indirected so token parsing is testable.
var jsonUnmarshal = json.Unmarshal

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Reports"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var clientJSON []byte
	switch {
	case strings.TrimSpace(cfg.ClientJSON) != "":
		clientJSON = []byte(cfg.ClientJSON)
	case strings.TrimSpace(cfg.ClientFile) != "":
		b, err := os.ReadFile(cfg.ClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		clientJSON = b
	default:
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}

	oauthCfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	var tokenJSON []byte
	switch {
	case strings.TrimSpace(cfg.TokenJSON) != "":
		tokenJSON = []byte(cfg.TokenJSON)
	case strings.TrimSpace(cfg.TokenFile) != "":
		b, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth token file: %w", err)
		}
		tokenJSON = b
	default:
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	var token oauth2.Token
	if err := jsonUnmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	// The token source refreshes expired tokens transparently
	service, err := gsheet.NewService(ctx,
		goption.WithTokenSource(oauthCfg.TokenSource(ctx, &token)),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendMonthReport writes a summary row followed by one row per
// occurrence. Reports for different years land on year-prefixed
// sheets.
func (c *Client) AppendMonthReport(ctx context.Context, report core.MonthView) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if report.Month < 1 || report.Month > 12 {
		return "", fmt.Errorf("invalid month: %d", report.Month)
	}

	sheet := yearPrefixedName(c.sheetName, report.Year)

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheet, err)
	}
	nextRow := len(resp.Values) + 1

	// Summary row: period, marker, income total, bill total, net
	rows := [][]any{{
		fmt.Sprintf("%04d-%02d", report.Year, report.Month),
		"total",
		"",
		centsToEuros(report.IncomeTotal.Cents),
		centsToEuros(report.BillTotal.Cents),
		centsToEuros(report.Net.Cents),
	}}
	for _, item := range report.Items {
		rows = append(rows, []any{
			item.Date.String(),
			string(item.Kind),
			item.Name,
			centsToEuros(item.Amount.Cents),
			item.Category,
		})
	}

	lastRow := nextRow + len(rows) - 1
	dataRange := fmt.Sprintf("%s!A%d:F%d", sheet, nextRow, lastRow)
	vr := &gsheet.ValueRange{Values: rows}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

func centsToEuros(cents int64) float64 {
	return float64(cents) / 100.0
}

// yearPrefixedName returns "<year> <base>" unless base already starts
// with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
