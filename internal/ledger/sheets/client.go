package sheets

import (
	"context"
	"time"

	gsheets "google.golang.org/api/sheets/v4"
)

var ist = time.FixedZone("IST", 19800)

type apiClient struct {
	srv *gsheets.Service
}

func (c *apiClient) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := c.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (c *apiClient) AddSheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: title,
					GridProperties: &gsheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}
	_, err := c.srv.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (c *apiClient) Read(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	vr, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (c *apiClient) Append(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := c.srv.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
