package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Grid is a single spreadsheet tab addressed with A1 notation. Rows are
// 1-indexed; row 1 is the header.
type Grid interface {
	// Values returns every non-empty row, header first.
	Values(ctx context.Context) ([][]any, error)
	// Update overwrites the cells of an A1 range such as "A5:AD5".
	Update(ctx context.Context, rng string, values [][]any) error
	Append(ctx context.Context, row []any) error
	DeleteRow(ctx context.Context, row int) error
}

// SheetsGrid is the Google Sheets implementation of Grid.
type SheetsGrid struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string

	mu      sync.Mutex
	sheetID *int64
}

// NewSheetsGrid builds a client from a service-account JSON key. An empty
// key falls back to application default credentials.
func NewSheetsGrid(ctx context.Context, spreadsheetID, sheetName, credentialsJSON string) (*SheetsGrid, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return NewSheetsGridWithService(svc, spreadsheetID, sheetName), nil
}

func NewSheetsGridWithService(svc *sheets.Service, spreadsheetID, sheetName string) *SheetsGrid {
	return &SheetsGrid{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

func (g *SheetsGrid) a1(rng string) string {
	name := "'" + strings.ReplaceAll(g.sheetName, "'", "''") + "'"
	if rng == "" {
		return name
	}
	return name + "!" + rng
}

func (g *SheetsGrid) Values(ctx context.Context) ([][]any, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.a1("")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *SheetsGrid) Update(ctx context.Context, rng string, values [][]any) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, g.a1(rng), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *SheetsGrid) Append(ctx context.Context, row []any) error {
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, g.a1("A1"), &sheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *SheetsGrid) DeleteRow(ctx context.Context, row int) error {
	sheetID, err := g.resolveSheetID(ctx)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
					// The first tab has id 0, which would otherwise be omitted.
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}
	_, err = g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

// resolveSheetID maps the tab name to its numeric id, needed by structural
// requests. The result is cached; tabs are not renamed at runtime.
func (g *SheetsGrid) resolveSheetID(ctx context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sheetID != nil {
		return *g.sheetID, nil
	}

	ss, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == g.sheetName {
			id := s.Properties.SheetId
			g.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", g.sheetName)
}
