package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/middleware"
	"github.com/smarttrans/smarttrans-backend/internal/models"
	"github.com/smarttrans/smarttrans-backend/internal/services"
)

// Deps is everything the HTTP layer calls into.
type Deps struct {
	Accounts    *services.Accounts
	Registry    *services.Registry
	Bookings    *services.Bookings
	Notifier    *services.Notifier
	Hub         *services.Hub
	Storage     *services.Storage
	Log         *slog.Logger
	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	if len(d.CORSOrigins) == 0 || contains(d.CORSOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = d.CORSOrigins
	}
	r.Use(cors.New(config))

	if d.Storage != nil && !d.Storage.UsingS3() {
		r.Static("/uploads", d.Storage.LocalDir())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Smart Transport Load-Matching System API"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/signup", Signup(d.Accounts))
		auth.POST("/token", Login(d.Accounts))
	}

	r.GET("/ws", middleware.WebSocketAuth(d.Accounts), WebSocketHandler(d.Hub))

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Accounts))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", GetProfile())
			users.PUT("/me", UpdateProfile(d.Accounts))
			users.POST("/me/picture", UploadProfilePicture(d.Accounts, d.Storage))
		}

		vehicles := protected.Group("/vehicles")
		{
			collection(vehicles, http.MethodPost, CreateVehicle(d.Registry), middleware.RequireRole(models.RoleOwner))
			collection(vehicles, http.MethodGet, ListVehicles(d.Registry))
		}

		trips := protected.Group("/trips")
		{
			collection(trips, http.MethodPost, CreateTrip(d.Registry), middleware.RequireRole(models.RoleOwner))
			collection(trips, http.MethodGet, SearchTrips(d.Registry))
			trips.GET("/my-trips", middleware.RequireRole(models.RoleOwner), MyTrips(d.Registry))
		}

		bookings := protected.Group("/bookings")
		{
			collection(bookings, http.MethodPost, CreateBooking(d.Bookings), middleware.RequireRole(models.RoleCustomer))
			collection(bookings, http.MethodGet, ListBookings(d.Bookings))
			bookings.PUT("/:id/status", UpdateBookingStatus(d.Bookings))
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", ListUsers(d.Accounts))
			admin.PUT("/users/:id/verify", VerifyUser(d.Accounts))
			admin.DELETE("/users/:id", DeleteUser(d.Accounts))
			admin.GET("/stats", GetStats(d.Accounts))
		}

		notifications := protected.Group("/notifications")
		{
			collection(notifications, http.MethodGet, ListNotifications(d.Notifier))
			notifications.PUT("/:id/read", MarkNotificationRead(d.Notifier))
		}
	}

	return r
}

// collection registers h on the group root with and without the
// trailing slash, so neither form is answered with a redirect.
func collection(g *gin.RouterGroup, method string, h gin.HandlerFunc, pre ...gin.HandlerFunc) {
	chain := append(pre, h)
	g.Handle(method, "", chain...)
	g.Handle(method, "/", chain...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
