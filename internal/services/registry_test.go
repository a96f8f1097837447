package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
)

func TestRegisterVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	other := env.signup(t, "other@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)

	v := env.vehicle(t, owner, "KBX 123A")
	assert.Equal(t, owner.ID, v.OwnerID)

	_, err := env.registry.RegisterVehicle(ctx, other, VehicleInput{Type: "van", Capacity: "2 tons", RegistrationNumber: "KBX 123A"})
	assert.True(t, errors.Is(err, errs.ErrConflict))

	_, err = env.registry.RegisterVehicle(ctx, customer, VehicleInput{Type: "van", Capacity: "2 tons", RegistrationNumber: "KCA 999Z"})
	assert.True(t, errors.Is(err, errs.ErrForbidden))
}

func TestListVehiclesScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	other := env.signup(t, "other@example.com", models.RoleOwner)
	admin := env.admin(t)
	env.vehicle(t, owner, "KBX 123A")
	env.vehicle(t, other, "KCA 999Z")

	mine, err := env.registry.ListVehicles(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "KBX 123A", mine[0].RegistrationNumber)

	all, err := env.registry.ListVehicles(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.NotPanics(t, func() {
		_, err = env.registry.ListVehicles(ctx, nil)
	})
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestPostTripOnForeignVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	other := env.signup(t, "other@example.com", models.RoleOwner)
	v := env.vehicle(t, owner, "KBX 123A")

	for _, id := range []uint{v.ID, 999} {
		_, err := env.registry.PostTrip(ctx, other, TripInput{VehicleID: id, StartLocation: "A", EndLocation: "B"})
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		assert.Equal(t, "Vehicle not found or does not belong to you", errs.Public(err))
	}

	trip := env.trip(t, owner, v, "Nairobi", "Mombasa")
	assert.Equal(t, models.TripStatusOpen, trip.Status)
}

func TestSearchTrips(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	v := env.vehicle(t, owner, "KBX 123A")
	t1 := env.trip(t, owner, v, "Nairobi", "Mombasa")
	t2 := env.trip(t, owner, v, "Kisumu", "Nairobi")
	closed := env.trip(t, owner, v, "Nairobi CBD", "Nakuru")
	require.NoError(t, env.db.Model(closed).Update("status", models.TripStatusCompleted).Error)

	ids := func(trips []models.Trip) []uint {
		out := make([]uint, 0, len(trips))
		for _, tr := range trips {
			out = append(out, tr.ID)
		}
		return out
	}

	cases := []struct {
		name   string
		filter TripFilter
		want   []uint
	}{
		{"no filter", TripFilter{}, []uint{t1.ID, t2.ID}},
		{"start substring", TripFilter{StartLocation: "Nai"}, []uint{t1.ID}},
		{"case sensitive", TripFilter{StartLocation: "nai"}, []uint{}},
		{"end", TripFilter{EndLocation: "Nairobi"}, []uint{t2.ID}},
		{"both", TripFilter{StartLocation: "Kis", EndLocation: "robi"}, []uint{t2.ID}},
		{"both mismatch", TripFilter{StartLocation: "Kis", EndLocation: "Mombasa"}, []uint{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trips, err := env.registry.SearchTrips(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(trips))
		})
	}
}

func TestListOwnTrips(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.signup(t, "owner@example.com", models.RoleOwner)
	other := env.signup(t, "other@example.com", models.RoleOwner)
	customer := env.signup(t, "customer@example.com", models.RoleCustomer)

	mine := env.trip(t, owner, env.vehicle(t, owner, "KBX 123A"), "Nairobi", "Mombasa")
	require.NoError(t, env.db.Model(mine).Update("status", models.TripStatusCancelled).Error)
	env.trip(t, other, env.vehicle(t, other, "KCA 999Z"), "Kisumu", "Eldoret")

	trips, err := env.registry.ListOwnTrips(ctx, owner)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, mine.ID, trips[0].ID)
	assert.Equal(t, models.TripStatusCancelled, trips[0].Status)

	_, err = env.registry.ListOwnTrips(ctx, customer)
	assert.True(t, errors.Is(err, errs.ErrForbidden))
}
