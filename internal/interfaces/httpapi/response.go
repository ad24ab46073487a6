package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "tournament-reconciler"

	// statusClientClosed is reported when the caller went away before the
	// operation finished.
	statusClientClosed = 499
)

// envelope wraps every response. Operation echoes the dispatched field so
// callers batching several ops can correlate replies.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Operation  string     `json:"operation,omitempty"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain   string `json:"domain"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

type operationKey struct{}

func withOperation(ctx context.Context, field string) context.Context {
	return context.WithValue(ctx, operationKey{}, field)
}

func operationFrom(ctx context.Context) string {
	field, _ := ctx.Value(operationKey{}).(string)
	return field
}

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{
		APIVersion: apiVersion,
		Operation:  operationFrom(ctx),
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeJSON(w, mapped.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Operation:  operationFrom(ctx),
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors:  errorItems(err, mapped),
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	const msg = "internal server error"

	writeJSON(w, http.StatusInternalServerError, envelope{
		APIVersion: apiVersion,
		Operation:  operationFrom(ctx),
		Error: &errorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors:  []errorItem{{Domain: errorDomain, Reason: "internalError", Message: msg}},
		},
	})
}

// errorItems lists one item per failed struct field for validation errors
// and a single item otherwise.
func errorItems(err error, mapped mappedError) []errorItem {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return []errorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: err.Error()}}
	}

	items := make([]errorItem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		items = append(items, errorItem{
			Domain:   errorDomain,
			Reason:   "invalidField",
			Message:  fe.Error(),
			Location: fe.Namespace(),
		})
	}
	return items
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"}
	case errors.Is(err, usecase.ErrConflict):
		return mappedError{HTTPStatus: http.StatusConflict, Reason: "conflict", Status: "ALREADY_EXISTS"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"}
	case errors.Is(err, context.DeadlineExceeded):
		return mappedError{HTTPStatus: http.StatusGatewayTimeout, Reason: "deadlineExceeded", Status: "DEADLINE_EXCEEDED"}
	case errors.Is(err, context.Canceled):
		return mappedError{HTTPStatus: statusClientClosed, Reason: "cancelled", Status: "CANCELLED"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
	}
}

// isClientError reports whether err maps to a 4xx response.
func isClientError(err error) bool {
	status := mapError(err).HTTPStatus
	return status >= 400 && status < 500
}
