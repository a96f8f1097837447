package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/middleware"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

type BookingInput struct {
	TripID     uint    `json:"trip_id" binding:"required"`
	CargoSize  string  `json:"cargo_size" binding:"required"`
	TotalPrice *Amount `json:"total_price" binding:"required,gte=0"`
}

// CreateBooking handles a customer's booking request on a trip.
func CreateBooking(bookings *services.Bookings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		booking, err := bookings.CreateBooking(c.Request.Context(), middleware.CurrentUser(c), services.BookingInput{
			TripID:     input.TripID,
			CargoSize:  input.CargoSize,
			TotalPrice: input.TotalPrice.Value(),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, booking)
	}
}

func ListBookings(bookings *services.Bookings) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := bookings.ListBookings(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// UpdateBookingStatus takes the new status from a JSON body
// {"status": ...} or the status_update query parameter.
func UpdateBookingStatus(bookings *services.Bookings) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		status := c.Query("status_update")
		if status == "" {
			var input struct {
				Status string `json:"status"`
			}
			if c.Request.ContentLength != 0 {
				if err := c.ShouldBindJSON(&input); err != nil {
					bindError(c, err)
					return
				}
			}
			status = input.Status
		}

		booking, err := bookings.UpdateBookingStatus(c.Request.Context(), middleware.CurrentUser(c), id, status)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, booking)
	}
}
