package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"oss-activity/apperr"
)

// DefaultWorksheet is the worksheet commits are written to.
const DefaultWorksheet = "Sheet1"

// New worksheets are created with this grid.
const (
	newSheetRows = 1000
	newSheetCols = 10
)

// Worksheet is one tab of a spreadsheet.
type Worksheet interface {
	Values(ctx context.Context) ([][]string, error)
	Clear(ctx context.Context) error
	Append(ctx context.Context, rows [][]string) error
}

// Service talks to one spreadsheet through the Sheets API.
type Service struct {
	api           *gsheets.Service
	spreadsheetID string
}

// NewService authenticates with a service-account credential file.
func NewService(ctx context.Context, credentialsFile, spreadsheetID string) (*Service, error) {
	if credentialsFile == "" {
		return nil, apperr.ErrMissingCredentials
	}
	if spreadsheetID == "" {
		return nil, apperr.ErrMissingSpreadsheet
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, apperr.Wrap(apperr.ErrMissingCredentials, err)
	}
	return newService(ctx, spreadsheetID,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope))
}

func newService(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Service, error) {
	api, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating sheets client: %w", err)
	}
	return &Service{api: api, spreadsheetID: spreadsheetID}, nil
}

// LookupOrCreate returns the worksheet named title, adding it when the
// spreadsheet has none.
func (s *Service) LookupOrCreate(ctx context.Context, title string) (Worksheet, error) {
	ss, err := s.api.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error opening spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return &worksheet{svc: s, title: title}, nil
		}
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: title,
					GridProperties: &gsheets.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetCols,
					},
				},
			},
		}},
	}
	if _, err := s.api.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("error adding worksheet %s: %w", title, err)
	}
	return &worksheet{svc: s, title: title}, nil
}

type worksheet struct {
	svc   *Service
	title string
}

// a1 quotes the worksheet title for use as an A1 range.
func (w *worksheet) a1() string {
	return "'" + strings.ReplaceAll(w.title, "'", "''") + "'"
}

func (w *worksheet) Values(ctx context.Context) ([][]string, error) {
	vr, err := w.svc.api.Spreadsheets.Values.Get(w.svc.spreadsheetID, w.a1()).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(vr.Values))
	for i, r := range vr.Values {
		row := make([]string, len(r))
		for j, cell := range r {
			row[j] = fmt.Sprint(cell)
		}
		rows[i] = row
	}
	return rows, nil
}

func (w *worksheet) Clear(ctx context.Context) error {
	_, err := w.svc.api.Spreadsheets.Values.Clear(w.svc.spreadsheetID, w.a1(), &gsheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (w *worksheet) Append(ctx context.Context, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		row := make([]interface{}, len(r))
		for j, cell := range r {
			row[j] = cell
		}
		values[i] = row
	}
	_, err := w.svc.api.Spreadsheets.Values.Append(w.svc.spreadsheetID, w.a1(), &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
