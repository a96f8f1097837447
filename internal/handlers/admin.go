package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/middleware"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

func ListUsers(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := accounts.ListUsers(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func VerifyUser(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		user, err := accounts.VerifyUser(c.Request.Context(), middleware.CurrentUser(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func DeleteUser(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		if err := accounts.DeleteUser(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}

func GetStats(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := accounts.Stats(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
