package errors

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindValidation      Kind = "ValidationError"
	KindUnauthenticated Kind = "Unauthenticated"
	KindForbidden       Kind = "Forbidden"
	KindNotFound        Kind = "NotFound"
	KindConflict        Kind = "Conflict"
	KindInternal        Kind = "InternalError"
)

var (
	// ErrCourseNotFound is returned when a course id does not resolve.
	ErrCourseNotFound = NotFound("COURSE_NOT_FOUND", "course not found")
	// ErrNotCourseOwner is returned when an admin mutates a course they did not create.
	ErrNotCourseOwner = Forbidden("NOT_COURSE_OWNER", "course belongs to another admin")
	// ErrAlreadyPurchased is returned when a user buys the same course twice.
	ErrAlreadyPurchased = Conflict("ALREADY_PURCHASED", "course already purchased")
	// ErrAccountNotFound is returned when a token subject no longer resolves.
	ErrAccountNotFound = NotFound("ACCOUNT_NOT_FOUND", "account not found")
	// ErrEmailTaken is returned on signup with a registered email.
	ErrEmailTaken = Conflict("EMAIL_TAKEN", "email already registered")
	// ErrInvalidCredentials is returned for unknown email or wrong password.
	ErrInvalidCredentials = Unauthenticated("INVALID_CREDENTIALS", "invalid email or password")
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = Unauthenticated("MISSING_TOKEN", "authentication required")
	// ErrTokenInvalid is returned for malformed or badly signed tokens.
	ErrTokenInvalid = Unauthenticated("TOKEN_INVALID", "invalid token")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = Unauthenticated("TOKEN_EXPIRED", "token expired")
	// ErrWrongIdentityKind is returned when an admin token hits a user route or vice versa.
	ErrWrongIdentityKind = Forbidden("WRONG_IDENTITY_KIND", "token is not valid for this resource")
)

// AppError is a classified error carrying a stable code.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Kind and Code so wrapped copies of a sentinel compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Err = cause
	return &cp
}

func newError(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *AppError {
	return newError(KindValidation, code, message)
}

func Unauthenticated(code, message string) *AppError {
	return newError(KindUnauthenticated, code, message)
}

func Forbidden(code, message string) *AppError {
	return newError(KindForbidden, code, message)
}

func NotFound(code, message string) *AppError {
	return newError(KindNotFound, code, message)
}

func Conflict(code, message string) *AppError {
	return newError(KindConflict, code, message)
}

// Internal wraps an unexpected failure. The cause is kept for logs, never for clients.
func Internal(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, Err: cause}
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Kind       Kind
	cause      error
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string, kind Kind) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
		Kind:       kind,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse. Internal detail is
// attached only when exposeDetail is set.
func (e *HTTPError) ToErrorResponse(exposeDetail bool) ErrorResponse {
	resp := ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
		Kind:  e.Kind,
	}
	if exposeDetail && e.cause != nil {
		resp.Detail = e.cause.Error()
	}
	return resp
}

// FromStatus classifies a transport-level error that carries only a status,
// such as a routing miss or a malformed body.
func FromStatus(status int, message string) *HTTPError {
	kind := KindValidation
	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthenticated
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		kind = KindNotFound
	case status == http.StatusConflict:
		kind = KindConflict
	case status >= http.StatusInternalServerError:
		kind = KindInternal
		code = "INTERNAL_ERROR"
		message = "internal server error"
	}
	if code == "" {
		code = "HTTP_ERROR"
	}
	return NewHTTPError(status, message, code, kind)
}

var statusByKind = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindInternal:        http.StatusInternalServerError,
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		httpErr := NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR", KindInternal)
		httpErr.cause = err
		return httpErr
	}

	status, ok := statusByKind[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := appErr.Message
	if appErr.Kind == KindInternal {
		message = "internal server error"
	}
	httpErr := NewHTTPError(status, message, appErr.Code, appErr.Kind)
	httpErr.cause = err
	return httpErr
}
