package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/smarttrans/smarttrans-backend/internal/access"
	"github.com/smarttrans/smarttrans-backend/internal/database"
	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
)

// Registry owns vehicles and the trips posted against them.
type Registry struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewRegistry(db *gorm.DB, log *slog.Logger) *Registry {
	return &Registry{db: db, log: log}
}

type VehicleInput struct {
	Type               string
	Capacity           string
	RegistrationNumber string
}

func (r *Registry) RegisterVehicle(ctx context.Context, identity *models.User, in VehicleInput) (*models.Vehicle, error) {
	if err := requireRole(identity, "Only vehicle owners can add vehicles", models.RoleOwner); err != nil {
		return nil, err
	}

	reg := strings.TrimSpace(in.RegistrationNumber)
	if reg == "" {
		return nil, errs.InvalidInput("registration_number is required")
	}

	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Vehicle{}).Where("registration_number = ?", reg).Count(&count).Error; err != nil {
		return nil, errs.Internal("failed to check registration", err)
	}
	if count > 0 {
		return nil, errs.Conflict("Vehicle with this registration number already exists")
	}

	vehicle := &models.Vehicle{
		OwnerID:            identity.ID,
		Type:               in.Type,
		Capacity:           in.Capacity,
		RegistrationNumber: reg,
	}
	if err := db.Create(vehicle).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errs.Conflict("Vehicle with this registration number already exists")
		}
		return nil, errs.Internal("failed to create vehicle", err)
	}
	return vehicle, nil
}

// ListVehicles returns every vehicle for admins and the caller's own
// vehicles for everyone else, by id.
func (r *Registry) ListVehicles(ctx context.Context, identity *models.User) ([]models.Vehicle, error) {
	if identity == nil {
		return nil, errs.ErrUnauthenticated
	}

	q := r.db.WithContext(ctx).Order("id")
	if !access.CanSeeAll(identity) {
		q = q.Where("owner_id = ?", identity.ID)
	}

	var vehicles []models.Vehicle
	if err := q.Find(&vehicles).Error; err != nil {
		return nil, errs.Internal("failed to fetch vehicles", err)
	}
	return vehicles, nil
}

type TripInput struct {
	VehicleID         uint
	StartLocation     string
	EndLocation       string
	StartDatetime     time.Time
	AvailableCapacity string
	PricePerUnit      float64
	Description       string
}

// PostTrip opens a trip on one of the caller's vehicles. A vehicle that
// does not exist and one that belongs to someone else produce the same
// error.
func (r *Registry) PostTrip(ctx context.Context, identity *models.User, in TripInput) (*models.Trip, error) {
	if err := requireRole(identity, "Only vehicle owners can create trips", models.RoleOwner); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)

	var vehicle models.Vehicle
	err := db.First(&vehicle, in.VehicleID).Error
	if err != nil && !database.IsNotFound(err) {
		return nil, errs.Internal("failed to load vehicle", err)
	}
	if err != nil || access.RequireVehicleOwner(identity, &vehicle) != nil {
		return nil, errs.NotFound("Vehicle not found or does not belong to you")
	}

	trip := &models.Trip{
		VehicleID:         vehicle.ID,
		StartLocation:     in.StartLocation,
		EndLocation:       in.EndLocation,
		StartDatetime:     in.StartDatetime,
		AvailableCapacity: in.AvailableCapacity,
		PricePerUnit:      in.PricePerUnit,
		Description:       in.Description,
		Status:            models.TripStatusOpen,
	}
	if err := db.Create(trip).Error; err != nil {
		return nil, errs.Internal("failed to create trip", err)
	}
	return trip, nil
}

// TripFilter narrows a search. Empty fields do not filter.
type TripFilter struct {
	StartLocation string
	EndLocation   string
}

// SearchTrips lists open trips whose locations contain the filter
// strings, case-sensitively. There is no date filter.
func (r *Registry) SearchTrips(ctx context.Context, filter TripFilter) ([]models.Trip, error) {
	db := r.db.WithContext(ctx)
	q := db.Where("status = ?", models.TripStatusOpen)
	if filter.StartLocation != "" {
		q = q.Where(database.ContainsExpr(db, "start_location"), filter.StartLocation)
	}
	if filter.EndLocation != "" {
		q = q.Where(database.ContainsExpr(db, "end_location"), filter.EndLocation)
	}

	var trips []models.Trip
	if err := q.Order("id").Find(&trips).Error; err != nil {
		return nil, errs.Internal("failed to search trips", err)
	}
	return trips, nil
}

// ListOwnTrips returns all trips on the caller's vehicles, any status.
func (r *Registry) ListOwnTrips(ctx context.Context, identity *models.User) ([]models.Trip, error) {
	if err := access.RequireRole(identity, models.RoleOwner); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	owned := db.Model(&models.Vehicle{}).Select("id").Where("owner_id = ?", identity.ID)

	var trips []models.Trip
	if err := db.Where("vehicle_id IN (?)", owned).Order("id").Find(&trips).Error; err != nil {
		return nil, errs.Internal("failed to fetch trips", err)
	}
	return trips, nil
}

// requireRole is access.RequireRole with a domain message on refusal.
func requireRole(identity *models.User, msg string, roles ...models.Role) error {
	err := access.RequireRole(identity, roles...)
	if err != nil && errs.KindOf(err) == errs.KindForbidden {
		return errs.Forbidden(msg)
	}
	return err
}
