package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/amirphl/tariff-sheets-sync/app/services"
	"github.com/amirphl/tariff-sheets-sync/config"
	"github.com/amirphl/tariff-sheets-sync/models"
	"github.com/amirphl/tariff-sheets-sync/repository"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// ExportFlow republishes the joined tariff view to the spreadsheet
type ExportFlow interface {
	Run(ctx context.Context) (*ExportResult, error)
	RunLogged(ctx context.Context) services.TaskRun
}

// ExportResult reports what one export wrote
type ExportResult struct {
	Rows         int
	UpdatedCells int64
	UpdatedRows  int64
	UpdatedRange string
	SnapshotPath string
}

// ExportSettings carries the Google and export configuration the flow reads on every run
type ExportSettings struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetRange      string
	IncludeHeader   bool
}

// NewExportSettings picks the export settings out of the process config
func NewExportSettings(cfg *config.Config) ExportSettings {
	return ExportSettings{
		CredentialsPath: cfg.Google.CredentialsPath,
		SpreadsheetID:   cfg.Google.SpreadsheetID,
		SheetRange:      cfg.Google.SheetRange,
		IncludeHeader:   cfg.Export.IncludeHeader,
	}
}

type ExportFlowImpl struct {
	reportRepo    repository.TariffReportRepository
	writerFactory services.SheetWriterFactory
	snapshot      services.SnapshotWriter
	settings      ExportSettings
	logger        *log.Logger
	boundary      taskBoundary
}

// NewExportFlow builds the export flow. snapshot may be nil.
func NewExportFlow(
	reportRepo repository.TariffReportRepository,
	writerFactory services.SheetWriterFactory,
	snapshot services.SnapshotWriter,
	settings ExportSettings,
	statusStore services.RunStatusStore,
	clock utils.Clock,
	logger *log.Logger,
) ExportFlow {
	if settings.SheetRange == "" {
		settings.SheetRange = "Sheet1!A1"
	}
	return &ExportFlowImpl{
		reportRepo:    reportRepo,
		writerFactory: writerFactory,
		snapshot:      snapshot,
		settings:      settings,
		logger:        logger,
		boundary: taskBoundary{
			task:   utils.TaskExport,
			store:  statusStore,
			clock:  clock,
			logger: logger,
		},
	}
}

// Run authorizes first, so a credential problem fails before the database
// read and before any spreadsheet call. The grid overwrites cells from the
// configured range onward; cells past it are not cleared.
func (f *ExportFlowImpl) Run(ctx context.Context) (*ExportResult, error) {
	result := &ExportResult{}

	account, err := services.LoadServiceAccount(f.settings.CredentialsPath)
	if err != nil {
		return result, NewBusinessError(CodeCredentials, "failed to load service account", err)
	}
	if strings.TrimSpace(f.settings.SpreadsheetID) == "" {
		return result, NewBusinessError(CodeCredentials, "spreadsheet is not configured", ErrSpreadsheetIDMissing)
	}

	writer, err := f.writerFactory(ctx, account)
	if err != nil {
		return result, ClassifyError("failed to create sheets client", err)
	}

	rows, err := f.reportRepo.ListJoined(ctx)
	if err != nil {
		return result, ClassifyError("failed to load tariff report", err)
	}
	result.Rows = len(rows)

	grid := BuildExportGrid(rows, f.settings.IncludeHeader)

	res, err := writer.UpdateValues(ctx, f.settings.SpreadsheetID, f.settings.SheetRange, grid)
	if err != nil {
		return result, ClassifyError("failed to update spreadsheet", err)
	}
	result.UpdatedCells = res.UpdatedCells
	result.UpdatedRows = res.UpdatedRows
	result.UpdatedRange = res.UpdatedRange

	if f.snapshot != nil {
		path, err := f.snapshot.WriteSnapshot(sheetName(f.settings.SheetRange), grid)
		if err != nil {
			f.logger.Printf("export: snapshot failed: %v", err)
		} else {
			result.SnapshotPath = path
		}
	}

	return result, nil
}

// RunLogged is the scheduled entry point. Errors are logged and recorded, never returned.
func (f *ExportFlowImpl) RunLogged(ctx context.Context) services.TaskRun {
	run := f.boundary.begin()

	res, err := f.Run(ctx)

	run.Details = map[string]int64{
		"rows":          int64(res.Rows),
		"updated_cells": res.UpdatedCells,
		"updated_rows":  res.UpdatedRows,
	}
	run = f.boundary.finish(ctx, run, err, int64(res.Rows))

	if err != nil {
		f.logger.Printf("export: run=%s failed [%s]: %v", run.RunID, run.ErrorCode, err)
		return run
	}
	f.logger.Printf("export: run=%s %d cells updated.", run.RunID, res.UpdatedCells)
	return run
}

// BuildExportGrid flattens report rows in the fixed column order, optionally
// preceded by a header row of column names.
func BuildExportGrid(rows []*models.TariffReportRow, includeHeader bool) [][]any {
	grid := make([][]any, 0, len(rows)+1)
	if includeHeader {
		header := make([]any, len(models.TariffReportColumns))
		for i, name := range models.TariffReportColumns {
			header[i] = name
		}
		grid = append(grid, header)
	}
	for _, row := range rows {
		grid = append(grid, row.Values())
	}
	return grid
}

// sheetName extracts "Sheet1" from "Sheet1!A1"
func sheetName(a1Range string) string {
	name, _, found := strings.Cut(a1Range, "!")
	if !found {
		return "Sheet1"
	}
	return strings.Trim(name, "'")
}
