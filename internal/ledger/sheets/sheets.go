package sheets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/types"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var Header = []string{
	"timestamp_ist", "run_mode", "ticker", "buy_price",
	"sell_price", "shares", "pnl_amt", "pnl_pct", "final_capital",
}

const (
	newSheetRows = 2000
	newSheetCols = 20
)

// sheetClient is the slice of the Sheets API the ledger needs.
type sheetClient interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	AddSheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) error
	Read(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

// Ledger appends one row per round trip to a worksheet, creating the
// worksheet and its header row on first use.
type Ledger struct {
	client        sheetClient
	spreadsheetID string
	sheet         string

	mu    sync.Mutex
	ready bool
}

var _ interfaces.TradeLedger = (*Ledger)(nil)

// New connects with a service account. credentials is the key file JSON,
// either raw or base64 encoded.
func New(ctx context.Context, spreadsheetID, sheet, credentials string) (*Ledger, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is empty")
	}
	creds, err := decodeCredentials(credentials)
	if err != nil {
		return nil, err
	}
	srv, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return newWithClient(&apiClient{srv: srv}, spreadsheetID, sheet), nil
}

func newWithClient(c sheetClient, spreadsheetID, sheet string) *Ledger {
	if sheet == "" {
		sheet = "Trades"
	}
	return &Ledger{client: c, spreadsheetID: spreadsheetID, sheet: sheet}
}

func (l *Ledger) Name() string { return "sheets" }

func decodeCredentials(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("GCP_SERVICE_ACCOUNT_JSON not set")
	}
	if strings.HasPrefix(s, "{") {
		return []byte(s), nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("service account json: not JSON and not base64: %w", err)
	}
	return b, nil
}

func (l *Ledger) Record(ctx context.Context, rec types.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureSheet(ctx); err != nil {
		return err
	}
	if err := l.client.Append(ctx, l.spreadsheetID, l.sheet+"!A1", [][]any{Row(rec)}); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (l *Ledger) ensureSheet(ctx context.Context) error {
	if l.ready {
		return nil
	}

	titles, err := l.client.SheetTitles(ctx, l.spreadsheetID)
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}
	exists := false
	for _, t := range titles {
		if t == l.sheet {
			exists = true
			break
		}
	}
	if !exists {
		if err := l.client.AddSheet(ctx, l.spreadsheetID, l.sheet, newSheetRows, newSheetCols); err != nil {
			return fmt.Errorf("add sheet %s: %w", l.sheet, err)
		}
	}

	a1, err := l.client.Read(ctx, l.spreadsheetID, l.sheet+"!A1")
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(a1) == 0 || len(a1[0]) == 0 {
		header := make([]any, len(Header))
		for i, h := range Header {
			header[i] = h
		}
		if err := l.client.Append(ctx, l.spreadsheetID, l.sheet+"!A1", [][]any{header}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	l.ready = true
	return nil
}

// Row renders rec in Header column order.
func Row(rec types.TradeRecord) []any {
	return []any{
		rec.Time.In(ist).Format("2006-01-02 15:04:05 MST"),
		rec.RunMode,
		rec.Symbol,
		rec.BuyPrice.StringFixed(2),
		rec.SellPrice.StringFixed(2),
		strconv.Itoa(rec.Qty),
		rec.PnL.StringFixed(2),
		strconv.FormatFloat(rec.PnLPct, 'f', 4, 64),
		rec.Cash.StringFixed(2),
	}
}
