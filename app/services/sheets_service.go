package services

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/amirphl/tariff-sheets-sync/utils"
)

// SheetUpdateResult reports what a values update touched
type SheetUpdateResult struct {
	UpdatedRange   string
	UpdatedRows    int64
	UpdatedColumns int64
	UpdatedCells   int64
}

// SheetWriter overwrites a block of cells starting at a range
type SheetWriter interface {
	UpdateValues(ctx context.Context, spreadsheetID, writeRange string, values [][]any) (*SheetUpdateResult, error)
}

// SheetWriterFactory builds a SheetWriter authorized as the given account
type SheetWriterFactory func(ctx context.Context, account *ServiceAccount) (SheetWriter, error)

// GoogleSheetWriter writes through the Sheets v4 API
type GoogleSheetWriter struct {
	service *sheets.Service
}

// NewGoogleSheetWriter creates a writer from raw client options
func NewGoogleSheetWriter(ctx context.Context, opts ...option.ClientOption) (*GoogleSheetWriter, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSheetsRequest, err)
	}
	return &GoogleSheetWriter{service: srv}, nil
}

// NewServiceAccountSheetWriter creates a writer that authenticates as account
// with the spreadsheets scope. Extra options are appended after the token source.
func NewServiceAccountSheetWriter(ctx context.Context, account *ServiceAccount, opts ...option.ClientOption) (SheetWriter, error) {
	ts := account.JWTConfig(utils.SpreadsheetsScope).TokenSource(ctx)
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return NewGoogleSheetWriter(ctx, all...)
}

// UpdateValues calls spreadsheets.values.update with valueInputOption=RAW.
// Cells outside the written block are left as they are.
func (w *GoogleSheetWriter) UpdateValues(ctx context.Context, spreadsheetID, writeRange string, values [][]any) (*SheetUpdateResult, error) {
	resp, err := w.service.Spreadsheets.Values.
		Update(spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption(utils.ValueInputOptionRaw).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSheetsRequest, err)
	}

	return &SheetUpdateResult{
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}, nil
}
