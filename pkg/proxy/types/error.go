package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure at the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindBadRequest
	KindBadGateway
)

// String returns the error type reported in JSON bodies.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return ErrorTypeAuthentication
	case KindForbidden:
		return ErrorTypePermissionDenied
	case KindRateLimited:
		return ErrorTypeRateLimitExceeded
	case KindBadRequest:
		return ErrorTypeInvalidRequest
	case KindBadGateway:
		return ErrorTypeBadGateway
	default:
		return ErrorTypeServerError
	}
}

// HTTPStatusCode returns the status written for the kind.
func (k Kind) HTTPStatusCode() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBadRequest:
		return http.StatusBadRequest
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) code() string {
	switch k {
	case KindUnauthorized:
		return CodeUnauthorized
	case KindForbidden:
		return CodeForbidden
	case KindRateLimited:
		return CodeRateLimited
	case KindBadRequest:
		return CodeBadRequest
	case KindBadGateway:
		return CodeUpstreamUnavailable
	default:
		return CodeInternalError
	}
}

// Error type constants.
const (
	ErrorTypeInvalidRequest    = "invalid_request_error"
	ErrorTypeAuthentication    = "authentication_error"
	ErrorTypePermissionDenied  = "permission_denied"
	ErrorTypeRateLimitExceeded = "rate_limit_exceeded"
	ErrorTypeServerError       = "server_error"
	ErrorTypeBadGateway        = "bad_gateway"
)

// Error code constants.
const (
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeRateLimited         = "rate_limited"
	CodeBadRequest          = "bad_request"
	CodeRequestTooLarge     = "request_too_large"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeInternalError       = "internal_error"
)

// GatewayError is an error with a boundary classification. Message is safe
// to show clients; Err is the internal cause and is never serialized.
type GatewayError struct {
	Kind    Kind
	Message string
	Code    string
	Err     error
}

// Sentinel errors, one per kind, usable with errors.Is.
var (
	ErrUnauthorized = &GatewayError{Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden    = &GatewayError{Kind: KindForbidden, Message: "Forbidden"}
	ErrRateLimited  = &GatewayError{Kind: KindRateLimited, Message: "Too many requests"}
	ErrBadRequest   = &GatewayError{Kind: KindBadRequest, Message: "Bad request"}
	ErrBadGateway   = &GatewayError{Kind: KindBadGateway, Message: "Upstream unavailable"}
	ErrInternal     = &GatewayError{Kind: KindInternal, Message: "Internal server error"}
)

// New returns a GatewayError of the given kind wrapping cause.
func New(kind Kind, message string, cause error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Err: cause}
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is matches any GatewayError of the same kind, so errors.Is(err,
// ErrUnauthorized) holds for every unauthorized failure.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the classification of err; unclassified errors are internal.
func KindOf(err error) Kind {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindInternal
}

// ErrorResponse is the JSON body written for every error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the client-visible error information.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// HTTPStatusCode returns the status code matching the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypePermissionDenied:
		return http.StatusForbidden
	case ErrorTypeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrorTypeBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the body for err. Internal errors get a generic
// message regardless of their cause.
func NewErrorResponse(err error) *ErrorResponse {
	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		gerr = ErrInternal
	}
	message := gerr.Message
	if message == "" || gerr.Kind == KindInternal {
		message = ErrInternal.Message
	}
	code := gerr.Code
	if code == "" {
		code = gerr.Kind.code()
	}
	return &ErrorResponse{Error: ErrorDetail{
		Message: message,
		Type:    gerr.Kind.String(),
		Code:    code,
	}}
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteError writes the JSON error body and status for err.
func WriteError(w http.ResponseWriter, err error) error {
	resp := NewErrorResponse(err)
	return WriteJSON(w, resp.Error.HTTPStatusCode(), resp)
}
