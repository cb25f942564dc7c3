package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judychuepursuit/change-4-change-back/internal/http/middleware"
	"github.com/judychuepursuit/change-4-change-back/internal/http/validation"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/users"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

type AuthHandler struct {
	Users *users.Service
}

func NewAuthHandler(svc *users.Service) *AuthHandler {
	return &AuthHandler{Users: svc}
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Email and password are required.", errs))
		return
	}

	u, err := h.Users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": u})
}

type registerInput struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string `json:"lastName" binding:"required,min=1,max=100"`
	BirthDate string `json:"birth_date" binding:"required"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errs := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("All fields are required.", errs))
		return
	}

	_, err := h.Users.Register(c.Request.Context(), users.RegisterInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		BirthDate: in.BirthDate,
		Email:     in.Email,
		Password:  in.Password,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful"})
}

// GET /users
func (h *AuthHandler) List(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
