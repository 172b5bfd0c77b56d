package domain

import (
	"errors"
)

// Client errors. Messages are returned to callers verbatim, so detail is
// added by wrapping with %w rather than by changing these values.
var (
	ErrNotFound                   = errors.New("meter not found")
	ErrNotExist                   = errors.New("meter does not exist")
	ErrMissingID                  = errors.New("meter id required")
	ErrIDMismatch                 = errors.New("meter id in the body does not match the meter to be updated")
	ErrMissingFields              = errors.New("missing required fields")
	ErrDuplicateExternalReference = errors.New("meter with this external reference already exists")
	ErrDuplicateMeterID           = errors.New("meter with this id already exists")
	ErrInvalidSupplyRange         = errors.New("supply_end_date must not be before supply_start_date")
)

// Validation errors, reported field by field.
var (
	ErrInvalidID                = errors.New("invalid_meter_id")
	ErrInvalidPage              = errors.New("invalid_page")
	ErrInvalidPageSize          = errors.New("invalid_page_size")
	ErrInvalidOrderBy           = errors.New("invalid_order_by")
	ErrInvalidAnnualQuantity    = errors.New("invalid_annual_quantity")
	ErrInvalidExternalReference = errors.New("invalid_external_reference")
)

var clientErrors = []error{
	ErrNotFound,
	ErrNotExist,
	ErrMissingID,
	ErrIDMismatch,
	ErrMissingFields,
	ErrDuplicateExternalReference,
	ErrDuplicateMeterID,
	ErrInvalidSupplyRange,
	ErrInvalidID,
	ErrInvalidPage,
	ErrInvalidPageSize,
	ErrInvalidOrderBy,
	ErrInvalidAnnualQuantity,
	ErrInvalidExternalReference,
}

// IsClientError reports whether err was caused by the request rather than
// by the service or its storage.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
