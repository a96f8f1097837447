package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/middleware"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := notifier.ListForUser(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func MarkNotificationRead(notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		notification, err := notifier.MarkRead(c.Request.Context(), middleware.CurrentUser(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, notification)
	}
}
