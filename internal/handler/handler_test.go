package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket/internal/auth"
	apperr "coursemarket/internal/errors"
)

func decodeError(t *testing.T, body []byte) apperr.ErrorResponse {
	t.Helper()
	var resp apperr.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantKind   apperr.Kind
	}{
		{"app error", apperr.ErrCourseNotFound, http.StatusNotFound, "COURSE_NOT_FOUND", apperr.KindNotFound},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND", apperr.KindNotFound},
		{"echo bad request", echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest, "BAD_REQUEST", apperr.KindValidation},
		{"unclassified", errors.New("dial tcp: refused"), http.StatusInternalServerError, "INTERNAL_ERROR", apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			c, rec := newContext(e, http.MethodGet, "/", "", auth.Identity{})

			e.HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec.Body.Bytes())
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Empty(t, resp.Detail)
		})
	}
}

func TestErrorHandler_HidesInternalMessage(t *testing.T) {
	e := newTestEcho()
	c, rec := newContext(e, http.MethodGet, "/", "", auth.Identity{})

	e.HTTPErrorHandler(apperr.Internal("store failed", errors.New("password=hunter2")), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "store failed")
}

func TestErrorHandler_ExposesDetailInDevelopment(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(newTestLogger(), true)
	c, rec := newContext(e, http.MethodGet, "/", "", auth.Identity{})

	e.HTTPErrorHandler(apperr.Internal("store failed", errors.New("connection reset")), c)

	assert.Contains(t, decodeError(t, rec.Body.Bytes()).Detail, "connection reset")
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	e := newTestEcho()
	c, rec := newContext(e, http.MethodHead, "/", "", auth.Identity{})

	e.HTTPErrorHandler(apperr.ErrCourseNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCallerFrom_MissingIdentity(t *testing.T) {
	e := newTestEcho()
	c, _ := newContext(e, http.MethodGet, "/", "", auth.Identity{})

	_, err := callerFrom(c)

	assert.ErrorIs(t, err, apperr.ErrMissingToken)
}

func TestParseCourseID(t *testing.T) {
	id := uuid.New()

	got, err := parseCourseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for _, raw := range []string{"", "42", "not-a-uuid"} {
		_, err := parseCourseID(raw)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), raw)
	}
}

func TestBindAndValidate_Messages(t *testing.T) {
	e := newTestEcho()
	c, _ := newContext(e, http.MethodPost, "/", `{"email":"nope","password":"short"}`, auth.Identity{})

	var req SignupRequest
	err := bindAndValidate(c, &req)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "email must be a valid email")
	assert.Contains(t, appErr.Message, "password must be at least 8 characters")
	assert.Contains(t, appErr.Message, "firstname is required")
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	e := newTestEcho()
	c, _ := newContext(e, http.MethodPost, "/", `{"email":`, auth.Identity{})

	var req SignupRequest
	err := bindAndValidate(c, &req)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REQUEST", appErr.Code)
}
