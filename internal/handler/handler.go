package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"coursemarket/internal/auth"
	apperr "coursemarket/internal/errors"
)

// IdentityKey is the echo context key holding the authenticated auth.Identity.
const IdentityKey = "identity"

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// callerFrom returns the identity stored by the auth middleware.
func callerFrom(c echo.Context) (auth.Identity, error) {
	id, ok := c.Get(IdentityKey).(auth.Identity)
	if !ok {
		return auth.Identity{}, apperr.ErrMissingToken
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("INVALID_REQUEST", "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apperr.Validation("VALIDATION_ERROR", describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "url":
			msgs = append(msgs, field+" must be a valid URL")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// parseCourseID reads a UUID path or body value.
func parseCourseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("INVALID_COURSE_ID", "courseId must be a valid id")
	}
	return id, nil
}

// ErrorHandler renders every error as an ErrorResponse. Internal detail is
// included only when exposeDetail is set.
func ErrorHandler(log logrus.FieldLogger, exposeDetail bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			httpErr *apperr.HTTPError
			appErr  *apperr.AppError
			echoErr *echo.HTTPError
		)
		switch {
		case errors.As(err, &appErr):
			httpErr = apperr.MapErrorToHTTP(appErr)
		case errors.As(err, &echoErr):
			httpErr = apperr.FromStatus(echoErr.Code, fmt.Sprint(echoErr.Message))
		default:
			httpErr = apperr.MapErrorToHTTP(err)
		}

		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(httpErr.StatusCode)
			return
		}
		_ = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse(exposeDetail))
	}
}
