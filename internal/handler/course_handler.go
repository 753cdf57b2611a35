package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperr "coursemarket/internal/errors"
	"coursemarket/internal/model"
	"coursemarket/internal/service"
)

// CourseHandler handles catalog endpoints.
type CourseHandler struct {
	courseService service.CourseService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CreateCourseRequest represents a course creation request.
// Price accepts a JSON number or a decimal string.
type CreateCourseRequest struct {
	Title       string           `json:"title" validate:"required,max=100"`
	Description string           `json:"description" validate:"required,max=1000"`
	Price       *decimal.Decimal `json:"price" validate:"required" swaggertype:"string" example:"10.00"`
	Image       *string          `json:"image,omitempty" validate:"omitempty,url"`
}

// UpdateCourseRequest represents a partial course update.
type UpdateCourseRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price,omitempty" swaggertype:"string" example:"12.50"`
	Image       *string          `json:"image,omitempty" validate:"omitempty,url"`
}

// Create godoc
// @Summary Create a course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCourseRequest true "Course data"
// @Success 201 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req CreateCourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	course, err := h.courseService.CreateCourse(c.Request().Context(), caller, service.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, course)
}

// Update godoc
// @Summary Update a course owned by the caller
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Param request body UpdateCourseRequest true "Fields to change"
// @Success 200 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/courses/{courseId} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	courseID, err := parseCourseID(c.Param("courseId"))
	if err != nil {
		return err
	}
	var req UpdateCourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	course, err := h.courseService.UpdateCourse(c.Request().Context(), caller, courseID, model.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course owned by the caller
// @Description Existing purchases of the course are kept.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/courses/{courseId} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	courseID, err := parseCourseID(c.Param("courseId"))
	if err != nil {
		return err
	}
	if err := h.courseService.DeleteCourse(c.Request().Context(), caller, courseID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "course deleted"})
}

// ListOwned godoc
// @Summary List the caller's courses
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size 1-100 (default 10)"
// @Param sortBy query string false "createdAt|updatedAt|price|title"
// @Param order query string false "asc|desc"
// @Success 200 {object} model.CoursePage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/courses [get]
func (h *CourseHandler) ListOwned(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	params, err := listParams(c)
	if err != nil {
		return err
	}
	page, err := h.courseService.ListOwnedCourses(c.Request().Context(), caller, params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListPublic godoc
// @Summary Browse the catalog
// @Tags courses
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size 1-100 (default 10)"
// @Param sortBy query string false "createdAt|updatedAt|price|title"
// @Param order query string false "asc|desc"
// @Success 200 {object} model.CoursePage
// @Failure 400 {object} errors.ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) ListPublic(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}
	page, err := h.courseService.ListPublicCourses(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Get godoc
// @Summary Get one course
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{courseId} [get]
func (h *CourseHandler) Get(c echo.Context) error {
	courseID, err := parseCourseID(c.Param("courseId"))
	if err != nil {
		return err
	}
	course, err := h.courseService.GetCourse(c.Request().Context(), courseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

func listParams(c echo.Context) (service.ListParams, error) {
	var p service.ListParams
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		String("sortBy", &p.SortBy).
		String("order", &p.Order).
		BindError()
	if err != nil {
		return p, apperr.Validation("INVALID_QUERY", "page and limit must be integers")
	}
	return p, nil
}
