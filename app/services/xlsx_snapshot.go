package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// SnapshotWriter keeps a local copy of an exported grid and reports where it went
type SnapshotWriter interface {
	WriteSnapshot(sheetName string, rows [][]any) (string, error)
}

// XLSXSnapshotWriter writes the grid to a single-sheet workbook at Path, replacing it
type XLSXSnapshotWriter struct {
	Path string
}

func NewXLSXSnapshotWriter(path string) *XLSXSnapshotWriter {
	return &XLSXSnapshotWriter{Path: path}
}

func (w *XLSXSnapshotWriter) WriteSnapshot(sheetName string, rows [][]any) (string, error) {
	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if err := xl.SetSheetName(xl.GetSheetName(0), sheetName); err != nil {
		return "", fmt.Errorf("failed to name snapshot sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", err
		}
		record := row
		if err := xl.SetSheetRow(sheetName, cell, &record); err != nil {
			return "", fmt.Errorf("failed to write snapshot row %d: %w", i+1, err)
		}
	}

	if err := xl.SaveAs(w.Path); err != nil {
		return "", fmt.Errorf("failed to save snapshot %s: %w", w.Path, err)
	}
	return w.Path, nil
}
