package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/models"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

type SignupInput struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
}

// Signup creates an owner or customer account and returns it.
func Signup(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, err := accounts.Signup(c.Request.Context(), services.SignupInput{
			Email:          input.Email,
			Password:       input.Password,
			FullName:       input.FullName,
			Phone:          input.Phone,
			Role:           models.Role(input.Role),
			ProfilePicture: input.ProfilePicture,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// LoginInput accepts JSON {email, password} or the OAuth2 password form,
// where the email travels as username.
type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" binding:"required"`
}

func Login(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBind(&input); err != nil {
			bindError(c, err)
			return
		}

		email := input.Email
		if email == "" {
			email = input.Username
		}

		token, err := accounts.Login(c.Request.Context(), email, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, token)
	}
}
