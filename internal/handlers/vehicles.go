package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/middleware"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

type VehicleInput struct {
	Type               string `json:"type" binding:"required"`
	Capacity           string `json:"capacity" binding:"required"`
	RegistrationNumber string `json:"registration_number" binding:"required"`
}

func CreateVehicle(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input VehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		vehicle, err := registry.RegisterVehicle(c.Request.Context(), middleware.CurrentUser(c), services.VehicleInput{
			Type:               input.Type,
			Capacity:           input.Capacity,
			RegistrationNumber: input.RegistrationNumber,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, vehicle)
	}
}

func ListVehicles(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicles, err := registry.ListVehicles(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}
