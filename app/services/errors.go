// Package services contains the clients for the systems the sync talks to: the tariff API, Google Sheets, redis and the local filesystem
package services

import "errors"

var (
	// ErrTariffAPIRequest is returned when the tariff API could not be reached
	ErrTariffAPIRequest = errors.New("tariff api request failed")
	// ErrTariffAPIStatus is returned for a non-2xx tariff API response
	ErrTariffAPIStatus = errors.New("tariff api returned an error status")
	// ErrTariffPayload is returned when the tariff API body cannot be decoded or validated
	ErrTariffPayload = errors.New("tariff api payload is malformed")
	// ErrCredentials is returned for a missing or unusable Google service account
	ErrCredentials = errors.New("google credentials are invalid")
	// ErrSheetsRequest is returned when the spreadsheet update fails
	ErrSheetsRequest = errors.New("google sheets request failed")
)
