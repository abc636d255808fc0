package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/tariff-sheets-sync/app/dto"
)

type stubTaskHandler struct{}

func (stubTaskHandler) Health(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{Success: true, Message: "health"})
}

func (stubTaskHandler) Status(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{Success: true, Message: "status"})
}

func (stubTaskHandler) RunIngestion(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{Success: true, Message: "ingestion"})
}

func (stubTaskHandler) RunExport(c fiber.Ctx) error {
	panic("export exploded")
}

func newTestRouter(t *testing.T) (*fiber.App, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := NewFiberRouter(stubTaskHandler{}, log.New(&buf, "", 0))
	r.SetupRoutes()
	return r.GetApp(), &buf
}

func TestRoutes(t *testing.T) {
	app, _ := newTestRouter(t)

	tests := []struct {
		method  string
		path    string
		message string
	}{
		{http.MethodGet, "/api/v1/health", "health"},
		{http.MethodGet, "/api/v1/tasks/status", "status"},
		{http.MethodPost, "/api/v1/tasks/ingestion/run", "ingestion"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

			var body dto.APIResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestNotFound(t *testing.T) {
	app, _ := newTestRouter(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/unknown", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPanicIsRecovered(t *testing.T) {
	app, logs := newTestRouter(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/tasks/export/run", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, logs.String(), "export exploded")
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestRouter(t)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "tariff_sync_http_requests_total")
}
