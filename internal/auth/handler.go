package auth

import (
	"net/http"
	"strings"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Surname  string `json:"surname" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required,jwt"`
}

type AuthHandler struct {
	svc *Service
}

func NewAuthHandler(svc *Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/signin", h.Signin)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/signout", h.Signout)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), SignupInput{
		Name:     strings.TrimSpace(req.Name),
		Surname:  strings.TrimSpace(req.Surname),
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	result, err := h.svc.Signin(c.Request.Context(), SigninInput{
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	result, err := h.svc.Refresh(c.Request.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Signout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	if err := h.svc.Signout(c.Request.Context(), strings.TrimSpace(req.RefreshToken)); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
