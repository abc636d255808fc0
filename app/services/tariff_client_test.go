package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/tariff-sheets-sync/config"
)

const bareTariffBody = `{
	"dtNextBox": "2025-02-14",
	"dtTillMax": "2025-02-28",
	"warehouseList": [
		{"warehouseName": "Коледино", "boxDeliveryAndStorageExpr": "160", "boxDeliveryBase": "48", "boxDeliveryLiter": "11,2", "boxStorageBase": "0,1", "boxStorageLiter": "0,1"},
		{"warehouseName": "Подольск", "boxDeliveryAndStorageExpr": 150, "boxDeliveryBase": 46.5, "boxDeliveryLiter": 10, "boxStorageBase": 0.08, "boxStorageLiter": 0.08}
	]
}`

func newTestTariffClient(t *testing.T, handler http.HandlerFunc, mutate func(*config.TariffAPIConfig)) *WBTariffClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TariffAPIConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewWBTariffClient(cfg)
}

func TestFetchBoxTariffsBareBody(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	client := newTestTariffClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotAuth = r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bareTariffBody))
	}, nil)

	resp, err := client.FetchBoxTariffs(context.Background(), time.Date(2025, 2, 13, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/tariffs/box", gotPath)
	assert.Empty(t, gotQuery)
	assert.Empty(t, gotAuth)

	assert.Equal(t, "2025-02-14", resp.DtNextBox)
	assert.Equal(t, "2025-02-28", resp.DtTillMax)
	require.Len(t, resp.WarehouseList, 2)
	assert.Equal(t, "Коледино", resp.WarehouseList[0].WarehouseName)
	assert.InDelta(t, 11.2, resp.WarehouseList[0].BoxDeliveryLiter.Float64(), 1e-9)
	assert.InDelta(t, 46.5, resp.WarehouseList[1].BoxDeliveryBase.Float64(), 1e-9)
}

func TestFetchBoxTariffsEnvelopeWithDateAndToken(t *testing.T) {
	var gotDate, gotAuth string
	client := newTestTariffClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotDate, gotAuth = r.URL.Query().Get("date"), r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"response":{"data":` + bareTariffBody + `}}`))
	}, func(cfg *config.TariffAPIConfig) {
		cfg.SendDate = true
		cfg.Token = "secret-token"
	})

	resp, err := client.FetchBoxTariffs(context.Background(), time.Date(2025, 2, 13, 23, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2025-02-13", gotDate)
	assert.Equal(t, "secret-token", gotAuth)
	assert.Len(t, resp.WarehouseList, 2)
}

func TestFetchBoxTariffsMissingWarehouseList(t *testing.T) {
	client := newTestTariffClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dtNextBox":"2025-02-14","dtTillMax":"2025-02-28"}`))
	}, nil)

	resp, err := client.FetchBoxTariffs(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, resp.WarehouseList)
}

func TestFetchBoxTariffsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: ErrTariffAPIStatus},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"title":"unauthorized"}`, wantErr: ErrTariffAPIStatus},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: ErrTariffPayload},
		{name: "array body", status: http.StatusOK, body: `[1,2,3]`, wantErr: ErrTariffPayload},
		{name: "missing dates", status: http.StatusOK, body: `{"warehouseList":[]}`, wantErr: ErrTariffPayload},
		{name: "bad date format", status: http.StatusOK, body: `{"dtNextBox":"14.02.2025","dtTillMax":"2025-02-28","warehouseList":[]}`, wantErr: ErrTariffPayload},
		{name: "garbage figure", status: http.StatusOK, body: `{"dtNextBox":"2025-02-14","dtTillMax":"2025-02-28","warehouseList":[{"warehouseName":"x","boxDeliveryBase":"abc"}]}`, wantErr: ErrTariffPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestTariffClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			resp, err := client.FetchBoxTariffs(context.Background(), time.Now())
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestFetchBoxTariffsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewWBTariffClient(config.TariffAPIConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.FetchBoxTariffs(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrTariffAPIRequest)
}
