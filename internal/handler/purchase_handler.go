package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coursemarket/internal/model"
	"coursemarket/internal/service"
)

// PurchaseHandler handles user purchase endpoints.
type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// PurchaseRequest represents a purchase request.
type PurchaseRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// PurchasedCoursesResponse lists the caller's purchased courses.
type PurchasedCoursesResponse struct {
	Courses []model.Course `json:"courses"`
}

// Purchase godoc
// @Summary Purchase a course
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PurchaseRequest true "Course to buy"
// @Success 201 {object} model.PurchaseReceipt
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/courses/purchase [post]
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req PurchaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	courseID, err := parseCourseID(req.CourseID)
	if err != nil {
		return err
	}

	receipt, err := h.purchaseService.Purchase(c.Request().Context(), caller, courseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, receipt)
}

// ListPurchased godoc
// @Summary List purchased courses
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PurchasedCoursesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/courses [get]
func (h *PurchaseHandler) ListPurchased(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	courses, err := h.purchaseService.ListPurchasedCourses(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PurchasedCoursesResponse{Courses: courses})
}
