package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursemarket/internal/auth"
	apperr "coursemarket/internal/errors"
	"coursemarket/internal/model"
	"coursemarket/internal/service"
)

func TestCourseHandler_Create(t *testing.T) {
	admin := auth.Identity{ID: uuid.New(), Kind: auth.KindAdmin}
	created := &model.Course{ID: uuid.New(), OwnerAdminID: admin.ID, Title: "Go", Price: decimal.RequireFromString("10")}

	tests := []struct {
		name       string
		body       string
		setup      func(m *MockCourseService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created from number",
			body: `{"title":"Go","description":"Learn Go","price":10}`,
			setup: func(m *MockCourseService) {
				m.On("CreateCourse", mock.Anything, admin, mock.MatchedBy(func(in service.CreateCourseInput) bool {
					return in.Title == "Go" && in.Price.Equal(decimal.NewFromInt(10)) && in.Image == nil
				})).Return(created, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "created from string price",
			body: `{"title":"Go","description":"Learn Go","price":"10.00","image":"https://img.example.com/go.png"}`,
			setup: func(m *MockCourseService) {
				m.On("CreateCourse", mock.Anything, admin, mock.MatchedBy(func(in service.CreateCourseInput) bool {
					return in.Price.Equal(decimal.NewFromInt(10)) && in.Image != nil
				})).Return(created, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing price",
			body:       `{"title":"Go","description":"Learn Go"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "title too long",
			body:       `{"title":"` + strings.Repeat("a", 101) + `","description":"d","price":1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "negative price rejected by service",
			body: `{"title":"Go","description":"Learn Go","price":-1}`,
			setup: func(m *MockCourseService) {
				m.On("CreateCourse", mock.Anything, admin, mock.Anything).
					Return(nil, apperr.Validation("INVALID_PRICE", "price must be between 0 and 999999"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PRICE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCourseService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			h := NewCourseHandler(svc)
			e := newTestEcho()
			c, rec := newContext(e, http.MethodPost, "/api/v1/admin/courses", tt.body, admin)

			serve(e, c, h.Create)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec.Body.Bytes()).Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCourseHandler_Update(t *testing.T) {
	admin := auth.Identity{ID: uuid.New(), Kind: auth.KindAdmin}
	courseID := uuid.New()

	t.Run("partial update", func(t *testing.T) {
		svc := new(MockCourseService)
		svc.On("UpdateCourse", mock.Anything, admin, courseID, mock.MatchedBy(func(u model.CourseUpdate) bool {
			return u.Title != nil && *u.Title == "New" && u.Description == nil && u.Price == nil && u.Image == nil
		})).Return(&model.Course{ID: courseID, Title: "New"}, nil)
		h := NewCourseHandler(svc)
		e := newTestEcho()
		c, rec := newContext(e, http.MethodPut, "/", `{"title":"New"}`, admin)
		c.SetParamNames("courseId")
		c.SetParamValues(courseID.String())

		serve(e, c, h.Update)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("not owner", func(t *testing.T) {
		svc := new(MockCourseService)
		svc.On("UpdateCourse", mock.Anything, admin, courseID, mock.Anything).Return(nil, apperr.ErrNotCourseOwner)
		h := NewCourseHandler(svc)
		e := newTestEcho()
		c, rec := newContext(e, http.MethodPut, "/", `{"price":5}`, admin)
		c.SetParamNames("courseId")
		c.SetParamValues(courseID.String())

		serve(e, c, h.Update)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "NOT_COURSE_OWNER", decodeError(t, rec.Body.Bytes()).Code)
	})

	t.Run("bad id", func(t *testing.T) {
		h := NewCourseHandler(new(MockCourseService))
		e := newTestEcho()
		c, rec := newContext(e, http.MethodPut, "/", `{"title":"x"}`, admin)
		c.SetParamNames("courseId")
		c.SetParamValues("abc")

		serve(e, c, h.Update)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_COURSE_ID", decodeError(t, rec.Body.Bytes()).Code)
	})
}

func TestCourseHandler_Delete(t *testing.T) {
	admin := auth.Identity{ID: uuid.New(), Kind: auth.KindAdmin}
	courseID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusOK},
		{"missing", apperr.ErrCourseNotFound, http.StatusNotFound},
		{"not owner", apperr.ErrNotCourseOwner, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCourseService)
			svc.On("DeleteCourse", mock.Anything, admin, courseID).Return(tt.err)
			h := NewCourseHandler(svc)
			e := newTestEcho()
			c, rec := newContext(e, http.MethodDelete, "/", "", admin)
			c.SetParamNames("courseId")
			c.SetParamValues(courseID.String())

			serve(e, c, h.Delete)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCourseHandler_ListPublicBindsQuery(t *testing.T) {
	svc := new(MockCourseService)
	want := service.ListParams{Page: 2, Limit: 5, SortBy: "price", Order: "asc"}
	page := &model.CoursePage{Courses: []model.Course{{ID: uuid.New(), Title: "Go"}}}
	svc.On("ListPublicCourses", mock.Anything, want).Return(page, nil)
	h := NewCourseHandler(svc)
	e := newTestEcho()
	c, rec := newContext(e, http.MethodGet, "/api/v1/courses?page=2&limit=5&sortBy=price&order=asc", "", auth.Identity{})

	serve(e, c, h.ListPublic)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.CoursePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Courses, 1)
	svc.AssertExpectations(t)
}

func TestCourseHandler_ListPublicRejectsNonNumericPage(t *testing.T) {
	h := NewCourseHandler(new(MockCourseService))
	e := newTestEcho()
	c, rec := newContext(e, http.MethodGet, "/api/v1/courses?page=two", "", auth.Identity{})

	serve(e, c, h.ListPublic)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_QUERY", decodeError(t, rec.Body.Bytes()).Code)
}

func TestCourseHandler_ListOwned(t *testing.T) {
	admin := auth.Identity{ID: uuid.New(), Kind: auth.KindAdmin}
	svc := new(MockCourseService)
	svc.On("ListOwnedCourses", mock.Anything, admin, service.ListParams{}).Return(&model.CoursePage{}, nil)
	h := NewCourseHandler(svc)
	e := newTestEcho()
	c, rec := newContext(e, http.MethodGet, "/api/v1/admin/courses", "", admin)

	serve(e, c, h.ListOwned)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCourseHandler_Get(t *testing.T) {
	courseID := uuid.New()
	svc := new(MockCourseService)
	svc.On("GetCourse", mock.Anything, courseID).Return(nil, apperr.ErrCourseNotFound)
	h := NewCourseHandler(svc)
	e := newTestEcho()
	c, rec := newContext(e, http.MethodGet, "/", "", auth.Identity{})
	c.SetParamNames("courseId")
	c.SetParamValues(courseID.String())

	serve(e, c, h.Get)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}
