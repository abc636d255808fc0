// Package businessflow contains the ingestion and export use cases and their task boundaries
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/api/googleapi"

	"github.com/amirphl/tariff-sheets-sync/app/services"
)

// Error codes reported by task runs
const (
	CodeConnectivity = "CONNECTIVITY_ERROR"
	CodeDataShape    = "DATA_SHAPE_ERROR"
	CodeCredentials  = "CREDENTIALS_ERROR"
	CodeConstraint   = "CONSTRAINT_ERROR"
	CodeTaskFailed   = "TASK_FAILED"
)

// Business flow error constants
var (
	// ErrConnectivity covers transport failures and error statuses from the tariff API, Google or the database
	ErrConnectivity = errors.New("connectivity error")
	// ErrDataShape covers payloads that cannot be decoded or fail validation
	ErrDataShape = errors.New("data shape error")
	// ErrCredentials covers a missing or unusable service account or spreadsheet setting
	ErrCredentials = errors.New("credentials error")
	// ErrConstraint covers database integrity violations
	ErrConstraint = errors.New("constraint violation")

	ErrWarehouseListMissing = errors.New("warehouseList is missing")
	ErrSpreadsheetIDMissing = errors.New("GOOGLE_SPREADSHEET_ID is not set")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a BusinessError against the taxonomy sentinels by code
func (e *BusinessError) Is(target error) bool {
	switch target {
	case ErrConnectivity:
		return e.Code == CodeConnectivity
	case ErrDataShape:
		return e.Code == CodeDataShape
	case ErrCredentials:
		return e.Code == CodeCredentials
	case ErrConstraint:
		return e.Code == CodeConstraint
	}
	return false
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// ClassifyError wraps err in a BusinessError whose code places it in the
// error taxonomy. An err that already is a BusinessError is returned as is.
func ClassifyError(message string, err error) *BusinessError {
	if err == nil {
		return nil
	}

	var be *BusinessError
	if errors.As(err, &be) {
		return be
	}

	return NewBusinessError(classify(err), message, err)
}

func classify(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23":
			return CodeConstraint
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08":
			return CodeConnectivity
		}
		return CodeTaskFailed
	}

	switch {
	case errors.Is(err, services.ErrCredentials):
		return CodeCredentials
	case errors.Is(err, services.ErrTariffPayload):
		return CodeDataShape
	case errors.Is(err, services.ErrTariffAPIRequest),
		errors.Is(err, services.ErrTariffAPIStatus),
		errors.Is(err, services.ErrSheetsRequest):
		return CodeConnectivity
	case errors.Is(err, context.DeadlineExceeded):
		return CodeConnectivity
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return CodeConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeConnectivity
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return CodeConnectivity
	}

	return CodeTaskFailed
}

// ErrorCode returns the taxonomy code of err, or "" for nil
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return classify(err)
}

func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

func IsDataShape(err error) bool {
	return errors.Is(err, ErrDataShape)
}

func IsCredentials(err error) bool {
	return errors.Is(err, ErrCredentials)
}

func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}
