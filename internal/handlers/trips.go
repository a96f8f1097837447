package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/middleware"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

type TripInput struct {
	VehicleID         uint       `json:"vehicle_id" binding:"required"`
	StartLocation     string     `json:"start_location" binding:"required"`
	EndLocation       string     `json:"end_location" binding:"required"`
	StartDatetime     *Timestamp `json:"start_datetime" binding:"required"`
	AvailableCapacity string     `json:"available_capacity" binding:"required"`
	PricePerUnit      *Amount    `json:"price_per_unit" binding:"required,gte=0"`
	Description       string     `json:"description"`
}

func CreateTrip(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input TripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		trip, err := registry.PostTrip(c.Request.Context(), middleware.CurrentUser(c), services.TripInput{
			VehicleID:         input.VehicleID,
			StartLocation:     input.StartLocation,
			EndLocation:       input.EndLocation,
			StartDatetime:     input.StartDatetime.Time,
			AvailableCapacity: input.AvailableCapacity,
			PricePerUnit:      input.PricePerUnit.Value(),
			Description:       input.Description,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, trip)
	}
}

// SearchTrips lists open trips filtered by start_location and
// end_location substrings.
func SearchTrips(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		trips, err := registry.SearchTrips(c.Request.Context(), services.TripFilter{
			StartLocation: c.Query("start_location"),
			EndLocation:   c.Query("end_location"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, trips)
	}
}

func MyTrips(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		trips, err := registry.ListOwnTrips(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, trips)
	}
}
