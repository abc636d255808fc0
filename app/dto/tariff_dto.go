package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// BoxTariffsResponse is the payload of GET /api/v1/tariffs/box.
// WarehouseList is nil when the provider omitted it.
type BoxTariffsResponse struct {
	DtNextBox     string            `json:"dtNextBox" validate:"required,datetime=2006-01-02"`
	DtTillMax     string            `json:"dtTillMax" validate:"required,datetime=2006-01-02"`
	WarehouseList []WarehouseTariff `json:"warehouseList" validate:"-"`
}

// WarehouseTariff is one warehouseList entry
type WarehouseTariff struct {
	WarehouseName             string `json:"warehouseName" validate:"required"`
	BoxDeliveryAndStorageExpr Figure `json:"boxDeliveryAndStorageExpr" validate:"required"`
	BoxDeliveryBase           Figure `json:"boxDeliveryBase" validate:"required"`
	BoxDeliveryLiter          Figure `json:"boxDeliveryLiter" validate:"required"`
	BoxStorageBase            Figure `json:"boxStorageBase" validate:"required"`
	BoxStorageLiter           Figure `json:"boxStorageLiter" validate:"required"`
}

// BoxTariffsEnvelope is the wrapped form {"response":{"data":{...}}} the provider also serves
type BoxTariffsEnvelope struct {
	Response *struct {
		Data json.RawMessage `json:"data"`
	} `json:"response"`
}

// Figure is a tariff number that arrives either as a JSON number or as a
// string, possibly with a comma decimal separator ("11,2"). A missing value,
// null, "" or "-" leaves Valid false.
type Figure struct {
	Value decimal.Decimal
	Valid bool
}

// NewFigure builds a valid Figure from a float
func NewFigure(v float64) Figure {
	return Figure{Value: decimal.NewFromFloat(v), Valid: true}
}

func (f *Figure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Figure{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	raw = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(raw))
	if raw == "" || raw == "-" {
		*f = Figure{}
		return nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid tariff figure %s: %w", string(data), err)
	}
	*f = Figure{Value: d, Valid: true}
	return nil
}

func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(f.Value.String()), nil
}

// Float64 returns the figure as a float64 for the FLOAT columns
func (f Figure) Float64() float64 {
	v, _ := f.Value.Float64()
	return v
}

// NewTariffValidator returns a validator that treats an invalid Figure as
// missing, so `required` rejects null, "" and "-" while accepting 0.
func NewTariffValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		f, ok := field.Interface().(Figure)
		if !ok || !f.Valid {
			return nil
		}
		return f.Value.String()
	}, Figure{})
	return v
}
