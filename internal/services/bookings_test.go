package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
)

func TestBookingLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)
	vehicle := env.vehicle(t, owner, "KBX 123A")
	trip := env.trip(t, owner, vehicle, "Nairobi", "Mombasa")

	found, err := env.registry.SearchTrips(ctx, TripFilter{StartLocation: "Nairobi"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, trip.ID, found[0].ID)

	booking, err := env.bookings.CreateBooking(ctx, customer, BookingInput{
		TripID:     trip.ID,
		CargoSize:  "2 tons",
		TotalPrice: 3000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, customer.ID, booking.CustomerID)
	assert.True(t, strings.HasPrefix(booking.BookingReference, "BK-"))
	assert.Len(t, booking.BookingReference, 11)
	assert.Equal(t, strings.ToUpper(booking.BookingReference), booking.BookingReference)

	assert.Contains(t, env.channel.messagesFor(owner.ID),
		"New Booking Request #1 for your trip from Nairobi to Mombasa")

	ownerView, err := env.bookings.ListBookings(ctx, owner)
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	assert.Equal(t, booking.ID, ownerView[0].ID)
	assert.Equal(t, booking.BookingReference, ownerView[0].BookingReference)

	updated, err := env.bookings.UpdateBookingStatus(ctx, owner, booking.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, updated.Status)

	assert.Contains(t, env.channel.messagesFor(customer.ID), "Your booking #1 status is now: accepted")

	var stored models.Booking
	require.NoError(t, env.db.First(&stored, booking.ID).Error)
	assert.Equal(t, models.BookingStatusAccepted, stored.Status)
}

func TestCreateBookingRejectsUnavailableTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)
	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")

	require.NoError(t, env.db.Model(trip).Update("status", models.TripStatusFull).Error)

	_, err := env.bookings.CreateBooking(ctx, customer, BookingInput{TripID: trip.ID, CargoSize: "1 ton", TotalPrice: 10})
	assert.True(t, errors.Is(err, errs.ErrTripUnavailable))
	assert.Equal(t, "Trip is not available", errs.Public(err))

	_, err = env.bookings.CreateBooking(ctx, customer, BookingInput{TripID: 999, CargoSize: "1 ton", TotalPrice: 10})
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	var count int64
	require.NoError(t, env.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateBookingRequiresCustomer(t *testing.T) {
	env := newTestEnv(t)

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")

	_, err := env.bookings.CreateBooking(context.Background(), owner, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
	assert.True(t, errors.Is(err, errs.ErrForbidden))
}

func TestUpdateBookingStatusByOtherOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	intruder := env.signup(t, "intruder@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)
	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")

	booking, err := env.bookings.CreateBooking(ctx, customer, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
	require.NoError(t, err)
	before := env.notificationCount(t, customer.ID)

	_, err = env.bookings.UpdateBookingStatus(ctx, intruder, booking.ID, "accepted")
	assert.True(t, errors.Is(err, errs.ErrForbidden))
	assert.Equal(t, "Not authorized to manage this booking", errs.Public(err))

	// The customer is not the trip's owner either.
	_, err = env.bookings.UpdateBookingStatus(ctx, customer, booking.ID, "accepted")
	assert.True(t, errors.Is(err, errs.ErrForbidden))

	var stored models.Booking
	require.NoError(t, env.db.First(&stored, booking.ID).Error)
	assert.Equal(t, models.BookingStatusPending, stored.Status)
	assert.Equal(t, before, env.notificationCount(t, customer.ID))
}

func TestUpdateBookingStatusOnceOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)
	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")

	booking, err := env.bookings.CreateBooking(ctx, customer, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
	require.NoError(t, err)

	_, err = env.bookings.UpdateBookingStatus(ctx, owner, booking.ID, "rejected")
	require.NoError(t, err)
	after := env.notificationCount(t, customer.ID)

	for _, status := range []string{"rejected", "accepted"} {
		_, err = env.bookings.UpdateBookingStatus(ctx, owner, booking.ID, status)
		assert.True(t, errors.Is(err, errs.ErrInvalidTransition), status)
	}

	var stored models.Booking
	require.NoError(t, env.db.First(&stored, booking.ID).Error)
	assert.Equal(t, models.BookingStatusRejected, stored.Status)
	assert.Equal(t, after, env.notificationCount(t, customer.ID))
}

func TestUpdateBookingStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)
	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")
	booking, err := env.bookings.CreateBooking(ctx, customer, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
	require.NoError(t, err)

	for _, status := range []string{"pending", "cancelled", "ACCEPTED", ""} {
		_, err = env.bookings.UpdateBookingStatus(ctx, owner, booking.ID, status)
		assert.True(t, errors.Is(err, errs.ErrInvalidTransition), status)
	}

	_, err = env.bookings.UpdateBookingStatus(ctx, owner, 999, "accepted")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestConcurrentBookingsOnSameTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")
	customers := []*models.User{
		env.signup(t, "c1@example.com", models.RoleCustomer),
		env.signup(t, "c2@example.com", models.RoleCustomer),
	}

	var wg sync.WaitGroup
	results := make([]*models.Booking, len(customers))
	failures := make([]error, len(customers))
	for i, c := range customers {
		wg.Add(1)
		go func(i int, c *models.User) {
			defer wg.Done()
			results[i], failures[i] = env.bookings.CreateBooking(ctx, c, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
		}(i, c)
	}
	wg.Wait()

	for _, err := range failures {
		require.NoError(t, err)
	}
	assert.NotEqual(t, results[0].ID, results[1].ID)
	assert.NotEqual(t, results[0].BookingReference, results[1].BookingReference)
	assert.Len(t, env.channel.messagesFor(owner.ID), 3, "welcome plus one per booking")
}

func TestDuplicateBookingReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bookings.newReference = func() string { return "BK-SAMESAME" }

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)
	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")

	_, err := env.bookings.CreateBooking(ctx, customer, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
	require.NoError(t, err)
	_, err = env.bookings.CreateBooking(ctx, customer, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
	assert.True(t, errors.Is(err, errs.ErrConflict))
}

func TestListBookingsScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	otherOwner := env.signup(t, "other@example.com", models.RoleOwner)
	c1 := env.signup(t, "c1@example.com", models.RoleCustomer)
	c2 := env.signup(t, "c2@example.com", models.RoleCustomer)
	admin := env.admin(t)

	trip := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")
	b1, err := env.bookings.CreateBooking(ctx, c1, BookingInput{TripID: trip.ID, CargoSize: "1 ton"})
	require.NoError(t, err)
	b2, err := env.bookings.CreateBooking(ctx, c2, BookingInput{TripID: trip.ID, CargoSize: "2 tons"})
	require.NoError(t, err)

	mine, err := env.bookings.ListBookings(ctx, c1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b1.ID, mine[0].ID)

	forOwner, err := env.bookings.ListBookings(ctx, owner)
	require.NoError(t, err)
	require.Len(t, forOwner, 2)
	assert.Equal(t, b1.ID, forOwner[0].ID)
	assert.Equal(t, b2.ID, forOwner[1].ID)

	none, err := env.bookings.ListBookings(ctx, otherOwner)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := env.bookings.ListBookings(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
