package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/transport/http/middleware"
	"todo-api/internal/transport/http/response"
	"todo-api/internal/validation"
)

type AuthHandler struct {
	authService *app.AuthService
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := decodeBody(c, &req, "name"); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := decodeBody(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(app.ErrAuthRequired)
		return
	}

	profile, err := h.authService.Profile(c.Request.Context(), identity.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, profile)
}

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 100 << 10

func decodeBody(c *gin.Context, dst any, nonNullable ...string) error {
	_, err := decodeBodyWithPresence(c, dst, nonNullable...)
	return err
}

func decodeBodyWithPresence(c *gin.Context, dst any, nonNullable ...string) (validation.Presence, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	return validation.DecodeJSON(body, dst, nonNullable...)
}
