package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttrans/smarttrans-backend/internal/database"
	"github.com/smarttrans/smarttrans-backend/internal/models"
	"github.com/smarttrans/smarttrans-backend/internal/testutil"
)

func TestMigrationsCreateTables(t *testing.T) {
	db := testutil.NewDB(t)

	for _, m := range []interface{}{&models.User{}, &models.Vehicle{}, &models.Trip{}, &models.Booking{}, &models.Notification{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}

	// Running twice is harmless.
	require.NoError(t, database.RunMigrations(db))
}

func TestRoleCheckConstraint(t *testing.T) {
	db := testutil.NewDB(t)

	err := db.Create(&models.User{Email: "x@example.com", HashedPassword: "h", Role: "driver"}).Error
	assert.Error(t, err)
}

func TestUniqueRegistrationNumber(t *testing.T) {
	db := testutil.NewDB(t)

	owner := models.User{Email: "o@example.com", HashedPassword: "h", Role: models.RoleOwner}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&models.Vehicle{OwnerID: owner.ID, Type: "Truck", Capacity: "10 tons", RegistrationNumber: "KAA 001A"}).Error)

	err := db.Create(&models.Vehicle{OwnerID: owner.ID, Type: "Van", Capacity: "2 tons", RegistrationNumber: "KAA 001A"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestForeignKeysEnforced(t *testing.T) {
	db := testutil.NewDB(t)

	err := db.Create(&models.Vehicle{OwnerID: 999, Type: "Truck", Capacity: "1 ton", RegistrationNumber: "NOPE"}).Error
	assert.Error(t, err)
}

func TestContainsExprForSQLite(t *testing.T) {
	db := testutil.NewDB(t)
	assert.Equal(t, "instr(start_location, ?) > 0", database.ContainsExpr(db, "start_location"))
}
