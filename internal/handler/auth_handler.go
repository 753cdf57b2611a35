package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coursemarket/internal/auth"
	"coursemarket/internal/model"
	"coursemarket/internal/service"
)

// AuthHandler handles signup, login and profile endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a signup request for either identity kind.
type SignupRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Firstname string  `json:"firstname" validate:"required,max=100"`
	Lastname  string  `json:"lastname" validate:"required,max=100"`
	Image     *string `json:"image,omitempty" validate:"omitempty,url"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupResponse represents a signup response.
type SignupResponse struct {
	Message string        `json:"message"`
	Profile model.Profile `json:"profile"`
}

// SignupAdmin godoc
// @Summary Register a new admin
// @Tags admin
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/signup [post]
func (h *AuthHandler) SignupAdmin(c echo.Context) error {
	return h.signup(c, auth.KindAdmin)
}

// LoginAdmin godoc
// @Summary Login as admin
// @Tags admin
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) LoginAdmin(c echo.Context) error {
	return h.login(c, auth.KindAdmin)
}

// SignupUser godoc
// @Summary Register a new user
// @Tags user
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} SignupResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/signup [post]
func (h *AuthHandler) SignupUser(c echo.Context) error {
	return h.signup(c, auth.KindUser)
}

// LoginUser godoc
// @Summary Login as user
// @Tags user
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/login [post]
func (h *AuthHandler) LoginUser(c echo.Context) error {
	return h.login(c, auth.KindUser)
}

// Me godoc
// @Summary Current identity profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	profile, err := h.authService.Profile(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) signup(c echo.Context, kind auth.Kind) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.authService.Signup(c.Request().Context(), kind, service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Image:     req.Image,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, SignupResponse{
		Message: "registration successful",
		Profile: *profile,
	})
}

func (h *AuthHandler) login(c echo.Context, kind auth.Kind) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), kind, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}
