package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smarttrans/smarttrans-backend/internal/access"
	"github.com/smarttrans/smarttrans-backend/internal/database"
	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
)

// Bookings runs the booking lifecycle: customers request space on a
// trip, the trip's owner accepts or rejects.
type Bookings struct {
	db           *gorm.DB
	notifier     NotificationSink
	log          *slog.Logger
	newReference func() string
}

func NewBookings(db *gorm.DB, notifier NotificationSink, log *slog.Logger) *Bookings {
	return &Bookings{db: db, notifier: notifier, log: log, newReference: NewBookingReference}
}

// NewBookingReference returns BK- followed by eight upper-case hex
// characters.
func NewBookingReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

type BookingInput struct {
	TripID     uint
	CargoSize  string
	TotalPrice float64
}

// CreateBooking records a pending booking on an open trip and tells the
// trip's owner about it once the row is committed.
func (b *Bookings) CreateBooking(ctx context.Context, identity *models.User, in BookingInput) (*models.Booking, error) {
	if err := requireRole(identity, "Only customers can book trips", models.RoleCustomer); err != nil {
		return nil, err
	}

	var (
		booking *models.Booking
		trip    models.Trip
		owner   *models.User
	)

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&trip, in.TripID).Error
		if database.IsNotFound(err) {
			return errs.NotFound("Trip not found")
		}
		if err != nil {
			return errs.Internal("failed to load trip", err)
		}
		if !trip.Bookable() {
			return errs.TripUnavailable("Trip is not available")
		}

		booking = &models.Booking{
			BookingReference: b.newReference(),
			TripID:           trip.ID,
			CustomerID:       identity.ID,
			CargoSize:        in.CargoSize,
			TotalPrice:       in.TotalPrice,
			Status:           models.BookingStatusPending,
		}
		if err := tx.Create(booking).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return errs.Conflict("Booking reference already exists, please retry")
			}
			return errs.Internal("failed to create booking", err)
		}

		owner, err = tripOwner(tx, &trip)
		if err != nil {
			b.log.Warn("booking created without owner", "trip_id", trip.ID, "error", err)
			owner = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Info("booking created",
		"booking_id", booking.ID,
		"reference", booking.BookingReference,
		"trip_id", trip.ID,
		"customer_id", identity.ID,
	)

	if owner != nil {
		b.notifier.Notify(ctx, RecipientFor(owner), fmt.Sprintf(
			"New Booking Request #%d for your trip from %s to %s",
			booking.ID, trip.StartLocation, trip.EndLocation))
	}

	return booking, nil
}

func tripOwner(tx *gorm.DB, trip *models.Trip) (*models.User, error) {
	var vehicle models.Vehicle
	if err := tx.First(&vehicle, trip.VehicleID).Error; err != nil {
		return nil, err
	}
	var owner models.User
	if err := tx.First(&owner, vehicle.OwnerID).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// ListBookings scopes by role: customers see what they booked, owners
// see bookings on their vehicles' trips, admins see everything.
func (b *Bookings) ListBookings(ctx context.Context, identity *models.User) ([]models.Booking, error) {
	if identity == nil {
		return nil, errs.ErrUnauthenticated
	}

	q := b.db.WithContext(ctx).Model(&models.Booking{})
	switch identity.Role {
	case models.RoleCustomer:
		q = q.Where("bookings.customer_id = ?", identity.ID)
	case models.RoleOwner:
		q = q.Select("bookings.*").
			Joins("JOIN trips ON trips.id = bookings.trip_id").
			Joins("JOIN vehicles ON vehicles.id = trips.vehicle_id").
			Where("vehicles.owner_id = ?", identity.ID)
	case models.RoleAdmin:
	default:
		return nil, errs.Forbidden("Not authorized")
	}

	var bookings []models.Booking
	if err := q.Order("bookings.id").Find(&bookings).Error; err != nil {
		return nil, errs.Internal("failed to fetch bookings", err)
	}
	return bookings, nil
}

// UpdateBookingStatus lets the trip's owner move a pending booking to
// accepted or rejected. Decided bookings cannot be changed again, the
// same decision included.
func (b *Bookings) UpdateBookingStatus(ctx context.Context, identity *models.User, bookingID uint, status string) (*models.Booking, error) {
	if identity == nil {
		return nil, errs.ErrUnauthenticated
	}

	var (
		booking  models.Booking
		customer models.User
	)

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&booking, bookingID).Error
		if database.IsNotFound(err) {
			return errs.NotFound("Booking not found")
		}
		if err != nil {
			return errs.Internal("failed to load booking", err)
		}

		var trip models.Trip
		if err := tx.First(&trip, booking.TripID).Error; err != nil {
			return errs.Internal("failed to load trip", err)
		}
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, trip.VehicleID).Error; err != nil {
			return errs.Internal("failed to load vehicle", err)
		}
		if err := access.RequireTripOwner(identity, &vehicle); err != nil {
			return err
		}

		next, err := models.ParseDecision(status)
		if err != nil {
			return errs.InvalidTransition("Invalid status")
		}
		if !booking.Status.CanTransition(next) {
			return errs.InvalidTransition(fmt.Sprintf("Booking is already %s", booking.Status))
		}

		// Guard on the old status so two concurrent decisions cannot both win.
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, booking.Status).
			Update("status", next)
		if res.Error != nil {
			return errs.Internal("failed to update booking", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.InvalidTransition("Booking was already decided")
		}

		if err := tx.First(&booking, booking.ID).Error; err != nil {
			return errs.Internal("failed to reload booking", err)
		}
		if err := tx.First(&customer, booking.CustomerID).Error; err != nil {
			return errs.Internal("failed to load customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Info("booking status updated",
		"booking_id", booking.ID,
		"status", booking.Status,
		"owner_id", identity.ID,
	)

	b.notifier.Notify(ctx, RecipientFor(&customer),
		fmt.Sprintf("Your booking #%d status is now: %s", booking.ID, booking.Status))

	return &booking, nil
}
