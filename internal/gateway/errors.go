package gateway

import (
	"errors"
	"net/http"
	"strings"

	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	return "validation error"
}

func (v *ValidationErrors) add(field, code, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Code: code, Message: message})
}

// err returns nil when nothing was recorded.
func (v *ValidationErrors) err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// routeError is returned by the router for unknown paths and methods.
type routeError struct {
	status int
}

func (e *routeError) Error() string {
	return http.StatusText(e.status)
}

type badRequestBody struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

type validationBody struct {
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	Details    []ValidationError `json:"details"`
	StatusCode int               `json:"status_code"`
}

type internalBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type fieldRule struct {
	field   string
	message string
}

var validationRules = map[error]fieldRule{
	meterdomain.ErrInvalidID:                {field: "meter_id", message: "must be a positive integer"},
	meterdomain.ErrInvalidPage:              {field: "page", message: "must be at least 1"},
	meterdomain.ErrInvalidPageSize:          {field: "page_size", message: "out of range"},
	meterdomain.ErrInvalidOrderBy:           {field: "order_by", message: "must be a meter field, optionally prefixed with '-'"},
	meterdomain.ErrInvalidAnnualQuantity:    {field: "annual_quantity", message: "must be greater than 0"},
	meterdomain.ErrInvalidExternalReference: {field: "external_reference", message: "must be at most 32 characters"},
}

func mapError(err error) (int, any) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, validationBody{
			Error:      "Bad Request",
			Message:    "Validation failed",
			Details:    vErr.Errors,
			StatusCode: http.StatusBadRequest,
		}
	}

	for sentinel, rule := range validationRules {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, validationBody{
				Error:   "Bad Request",
				Message: "Validation failed",
				Details: []ValidationError{
					{
						Field:   rule.field,
						Code:    sentinel.Error(),
						Message: detailMessage(err, sentinel, rule.message),
					},
				},
				StatusCode: http.StatusBadRequest,
			}
		}
	}

	var rErr *routeError
	if errors.As(err, &rErr) {
		return rErr.status, badRequestBody{Error: rErr.Error(), StatusCode: rErr.status}
	}

	if meterdomain.IsClientError(err) {
		return http.StatusBadRequest, badRequestBody{Error: err.Error(), StatusCode: http.StatusBadRequest}
	}

	return http.StatusInternalServerError, internalBody{
		Error:      "Internal Server Error",
		Message:    "internal server error",
		StatusCode: http.StatusInternalServerError,
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// detailMessage prefers detail wrapped around the sentinel over the default.
func detailMessage(err, sentinel error, fallback string) string {
	prefix := sentinel.Error() + ": "
	if msg := err.Error(); strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return fallback
}
