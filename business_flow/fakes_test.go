package businessflow

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amirphl/tariff-sheets-sync/app/dto"
	"github.com/amirphl/tariff-sheets-sync/app/services"
	"github.com/amirphl/tariff-sheets-sync/models"
	"github.com/amirphl/tariff-sheets-sync/repository"
)

var testNow = time.Date(2025, time.February, 13, 14, 30, 0, 0, time.UTC)

func newTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

type fakeTariffClient struct {
	resp     *dto.BoxTariffsResponse
	err      error
	gotDates []time.Time
}

func (c *fakeTariffClient) FetchBoxTariffs(_ context.Context, date time.Time) (*dto.BoxTariffsResponse, error) {
	c.gotDates = append(c.gotDates, date)
	return c.resp, c.err
}

// fakeStore backs the three write repositories with slices
type fakeStore struct {
	mu              sync.Mutex
	tariffs         []*models.Tariff
	warehouses      []*models.Warehouse
	rows            []*models.TariffWarehouse
	failWarehouseAt int // 1-based Save call that fails; 0 disables
	warehouseErr    error
	upsertErr       error
	tariffErr       error
}

type fakeTariffRepo struct {
	repository.TariffRepository
	s *fakeStore
}

func (r fakeTariffRepo) Save(_ context.Context, t *models.Tariff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tariffErr != nil {
		return r.s.tariffErr
	}
	t.ID = uint(len(r.s.tariffs) + 1)
	r.s.tariffs = append(r.s.tariffs, t)
	return nil
}

type fakeWarehouseRepo struct {
	repository.WarehouseRepository
	s *fakeStore
}

func (r fakeWarehouseRepo) Save(_ context.Context, w *models.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWarehouseAt > 0 && len(r.s.warehouses)+1 == r.s.failWarehouseAt {
		return r.s.warehouseErr
	}
	w.ID = uint(len(r.s.warehouses) + 1)
	r.s.warehouses = append(r.s.warehouses, w)
	return nil
}

type fakeTariffWarehouseRepo struct {
	repository.TariffWarehouseRepository
	s *fakeStore
}

func (r fakeTariffWarehouseRepo) Upsert(_ context.Context, row *models.TariffWarehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.upsertErr != nil {
		return r.s.upsertErr
	}
	for _, existing := range r.s.rows {
		if existing.TariffID == row.TariffID && existing.WarehouseID == row.WarehouseID && existing.FetchDate.Equal(row.FetchDate) {
			existing.BoxDeliveryAndStorageExpr = row.BoxDeliveryAndStorageExpr
			existing.BoxDeliveryBase = row.BoxDeliveryBase
			existing.BoxDeliveryLiter = row.BoxDeliveryLiter
			existing.BoxStorageBase = row.BoxStorageBase
			existing.BoxStorageLiter = row.BoxStorageLiter
			row.ID = existing.ID
			return nil
		}
	}
	row.ID = uint(len(r.s.rows) + 1)
	cp := *row
	r.s.rows = append(r.s.rows, &cp)
	return nil
}

type fakeReportRepo struct {
	rows  []*models.TariffReportRow
	err   error
	calls int
}

func (r *fakeReportRepo) ListJoined(context.Context) ([]*models.TariffReportRow, error) {
	r.calls++
	return r.rows, r.err
}

type fakeSheetWriter struct {
	gotID    string
	gotRange string
	gotGrid  [][]any
	res      *services.SheetUpdateResult
	err      error
	calls    int
}

func (w *fakeSheetWriter) UpdateValues(_ context.Context, spreadsheetID, writeRange string, values [][]any) (*services.SheetUpdateResult, error) {
	w.calls++
	w.gotID, w.gotRange, w.gotGrid = spreadsheetID, writeRange, values
	if w.err != nil {
		return nil, w.err
	}
	if w.res != nil {
		return w.res, nil
	}
	cells := 0
	for _, row := range values {
		cells += len(row)
	}
	return &services.SheetUpdateResult{UpdatedCells: int64(cells), UpdatedRows: int64(len(values))}, nil
}

type fakeSnapshot struct {
	gotSheet string
	gotRows  [][]any
	path     string
	err      error
}

func (s *fakeSnapshot) WriteSnapshot(sheetName string, rows [][]any) (string, error) {
	s.gotSheet, s.gotRows = sheetName, rows
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

func writeServiceAccountFile(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": "sync@project.iam.gserviceaccount.com",
		"private_key":  string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}
