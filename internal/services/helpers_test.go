package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smarttrans/smarttrans-backend/internal/logger"
	"github.com/smarttrans/smarttrans-backend/internal/models"
	"github.com/smarttrans/smarttrans-backend/internal/testutil"
	"github.com/smarttrans/smarttrans-backend/pkg/utils"
)

const testPassword = "secret123"

type recordingChannel struct {
	mu         sync.Mutex
	name       string
	fail       bool
	deliveries []Delivery
}

func (c *recordingChannel) Name() string  { return c.name }
func (c *recordingChannel) Enabled() bool { return true }

func (c *recordingChannel) Deliver(_ context.Context, d Delivery) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, d)
	if c.fail {
		return errors.New("gateway down")
	}
	return nil
}

func (c *recordingChannel) messagesFor(userID uint) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, d := range c.deliveries {
		if d.Recipient.UserID == userID {
			out = append(out, d.Message)
		}
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	tokens   *utils.TokenManager
	channel  *recordingChannel
	notifier *Notifier
	accounts *Accounts
	registry *Registry
	bookings *Bookings
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := logger.Discard()
	channel := &recordingChannel{name: "recording"}
	notifier := NewNotifier(db, NewOutbound(log, channel), log)
	tokens := utils.NewTokenManager("test-secret", 30*time.Minute)

	return &testEnv{
		db:       db,
		tokens:   tokens,
		channel:  channel,
		notifier: notifier,
		accounts: NewAccounts(db, tokens, notifier, log),
		registry: NewRegistry(db, log),
		bookings: NewBookings(db, notifier, log),
	}
}

func (e *testEnv) signup(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	user, err := e.accounts.Signup(context.Background(), SignupInput{
		Email:    email,
		Password: testPassword,
		FullName: email,
		Phone:    "+254700000000",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) admin(t *testing.T) *models.User {
	t.Helper()
	user, _, err := e.accounts.EnsureAdmin(context.Background(), "admin@example.com", testPassword, "Admin")
	require.NoError(t, err)
	return user
}

func (e *testEnv) vehicle(t *testing.T, owner *models.User, reg string) *models.Vehicle {
	t.Helper()
	v, err := e.registry.RegisterVehicle(context.Background(), owner, VehicleInput{
		Type:               "truck",
		Capacity:           "10 tons",
		RegistrationNumber: reg,
	})
	require.NoError(t, err)
	return v
}

func (e *testEnv) trip(t *testing.T, owner *models.User, vehicle *models.Vehicle, from, to string) *models.Trip {
	t.Helper()
	trip, err := e.registry.PostTrip(context.Background(), owner, TripInput{
		VehicleID:         vehicle.ID,
		StartLocation:     from,
		EndLocation:       to,
		StartDatetime:     time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC),
		AvailableCapacity: "4 tons",
		PricePerUnit:      1500,
	})
	require.NoError(t, err)
	return trip
}

func (e *testEnv) notificationCount(t *testing.T, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
