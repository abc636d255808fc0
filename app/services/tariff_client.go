package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amirphl/tariff-sheets-sync/app/dto"
	"github.com/amirphl/tariff-sheets-sync/config"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// maxTariffBodySize caps how much of the response body is read
const maxTariffBodySize = 16 << 20

// TariffClient fetches box tariffs from the provider
type TariffClient interface {
	FetchBoxTariffs(ctx context.Context, date time.Time) (*dto.BoxTariffsResponse, error)
}

// WBTariffClient calls the Wildberries common API
type WBTariffClient struct {
	BaseURL    string
	Token      string
	SendDate   bool
	HTTPClient *http.Client
	validator  *validator.Validate
}

func NewWBTariffClient(cfg config.TariffAPIConfig) *WBTariffClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WBTariffClient{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		Token:      cfg.Token,
		SendDate:   cfg.SendDate,
		HTTPClient: &http.Client{Timeout: timeout},
		validator:  dto.NewTariffValidator(),
	}
}

// FetchBoxTariffs issues GET /api/v1/tariffs/box. date is sent as ?date=YYYY-MM-DD
// only when SendDate is set. The top-level dates are validated here; the
// warehouse entries are left to the caller.
func (c *WBTariffClient) FetchBoxTariffs(ctx context.Context, date time.Time) (*dto.BoxTariffsResponse, error) {
	endpoint := c.BaseURL + utils.BoxTariffsPath
	if c.SendDate {
		endpoint += "?" + url.Values{"date": []string{utils.FormatDate(date)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTariffAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTariffAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTariffBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTariffAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrTariffAPIStatus, resp.StatusCode, snippet)
	}

	out, err := decodeBoxTariffs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTariffPayload, err)
	}
	if err := c.validator.Struct(out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTariffPayload, err)
	}
	return out, nil
}

// decodeBoxTariffs accepts both the bare object and {"response":{"data":{...}}}
func decodeBoxTariffs(body []byte) (*dto.BoxTariffsResponse, error) {
	var env dto.BoxTariffsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	payload := body
	if env.Response != nil && len(env.Response.Data) > 0 && string(env.Response.Data) != "null" {
		payload = env.Response.Data
	}

	var out dto.BoxTariffsResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
