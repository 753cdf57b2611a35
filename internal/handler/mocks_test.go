package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"coursemarket/internal/auth"
	"coursemarket/internal/model"
	"coursemarket/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, kind auth.Kind, in service.SignupInput) (*model.Profile, error) {
	args := m.Called(ctx, kind, in)
	if p, ok := args.Get(0).(*model.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, kind auth.Kind, email, password string) (*service.Session, error) {
	args := m.Called(ctx, kind, email, password)
	if s, ok := args.Get(0).(*service.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, caller auth.Identity) (*model.Profile, error) {
	args := m.Called(ctx, caller)
	if p, ok := args.Get(0).(*model.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) CreateCourse(ctx context.Context, caller auth.Identity, in service.CreateCourseInput) (*model.Course, error) {
	args := m.Called(ctx, caller, in)
	if c, ok := args.Get(0).(*model.Course); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseService) UpdateCourse(ctx context.Context, caller auth.Identity, courseID uuid.UUID, upd model.CourseUpdate) (*model.Course, error) {
	args := m.Called(ctx, caller, courseID, upd)
	if c, ok := args.Get(0).(*model.Course); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseService) DeleteCourse(ctx context.Context, caller auth.Identity, courseID uuid.UUID) error {
	return m.Called(ctx, caller, courseID).Error(0)
}

func (m *MockCourseService) ListOwnedCourses(ctx context.Context, caller auth.Identity, params service.ListParams) (*model.CoursePage, error) {
	args := m.Called(ctx, caller, params)
	if p, ok := args.Get(0).(*model.CoursePage); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseService) ListPublicCourses(ctx context.Context, params service.ListParams) (*model.CoursePage, error) {
	args := m.Called(ctx, params)
	if p, ok := args.Get(0).(*model.CoursePage); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	args := m.Called(ctx, courseID)
	if c, ok := args.Get(0).(*model.Course); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Purchase(ctx context.Context, caller auth.Identity, courseID uuid.UUID) (*model.PurchaseReceipt, error) {
	args := m.Called(ctx, caller, courseID)
	if r, ok := args.Get(0).(*model.PurchaseReceipt); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseService) ListPurchasedCourses(ctx context.Context, caller auth.Identity) ([]model.Course, error) {
	args := m.Called(ctx, caller)
	if c, ok := args.Get(0).([]model.Course); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type structValidator struct {
	v *validator.Validate
}

func (s *structValidator) Validate(i interface{}) error {
	return s.v.Struct(i)
}

func newTestLogger() *logrus.Logger {
	log, _ := logtest.NewNullLogger()
	return log
}

// newTestEcho returns an echo instance configured like the server.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &structValidator{v: validator.New()}
	e.HTTPErrorHandler = ErrorHandler(newTestLogger(), false)
	return e
}

// newContext builds a request context. A non-zero caller is stored the way
// the auth middleware stores it.
func newContext(e *echo.Echo, method, target, body string, caller auth.Identity) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller.ID != uuid.Nil {
		c.Set(IdentityKey, caller)
	}
	return c, rec
}

// serve runs h and routes any returned error through the error handler.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}
