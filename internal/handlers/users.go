package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/middleware"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.CurrentUser(c))
	}
}

// UpdateProfileInput leaves role, email and verification out: those are
// not self-service.
type UpdateProfileInput struct {
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	ProfilePicture *string `json:"profile_picture"`
	Password       *string `json:"password"`
}

func UpdateProfile(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, err := accounts.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), services.ProfileUpdate{
			FullName:       input.FullName,
			Phone:          input.Phone,
			ProfilePicture: input.ProfilePicture,
			Password:       input.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// UploadProfilePicture takes a multipart "file" field and stores it as
// the caller's picture.
func UploadProfilePicture(accounts *services.Accounts, storage *services.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			respondError(c, errs.InvalidInput("file is required"))
			return
		}

		url, err := storage.UploadImage(c.Request.Context(), file, "profiles")
		if err != nil {
			respondError(c, err)
			return
		}

		user, err := accounts.SetProfilePicture(c.Request.Context(), middleware.CurrentUser(c), url)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}
