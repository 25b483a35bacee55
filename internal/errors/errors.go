package errors

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrderNotFound is returned when an order is not found.
	ErrOrderNotFound = errors.New("order not found")
	// ErrTicketNotFound is returned when a ticket is not found.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrCardDeclined is returned when the payment provider reports a
	// card-level failure. Card failures are not transient, so callers must
	// not retry the charge.
	ErrCardDeclined = errors.New("card declined")
	// ErrOrderNotCharged is returned when a refund is requested for an order
	// that was never charged.
	ErrOrderNotCharged = errors.New("order has no charge")
	// ErrOrderAlreadyPaid is returned when a charge is requested for an order
	// that is already confirmed.
	ErrOrderAlreadyPaid = errors.New("order already paid")
)

// FieldErrors collects per-field validation messages from a form submission.
// It is a recoverable error: nothing is persisted and the caller re-renders
// the form with the messages attached.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// AsFieldErrors unwraps err into FieldErrors if it is one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	if fe, ok := AsFieldErrors(err); ok {
		httpErr := NewHTTPError(http.StatusUnprocessableEntity, fe.Error(), "VALIDATION_ERROR")
		httpErr.Fields = fe
		return httpErr
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrOrderNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ORDER_NOT_FOUND")
	case errors.Is(err, ErrTicketNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TICKET_NOT_FOUND")
	case errors.Is(err, ErrCardDeclined):
		return NewHTTPError(http.StatusPaymentRequired, err.Error(), "CARD_DECLINED")
	case errors.Is(err, ErrOrderNotCharged):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ORDER_NOT_CHARGED")
	case errors.Is(err, ErrOrderAlreadyPaid):
		return NewHTTPError(http.StatusConflict, err.Error(), "ORDER_ALREADY_PAID")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
