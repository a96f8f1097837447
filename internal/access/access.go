// Package access holds the authorization predicates shared by the
// HTTP middleware and the services. Every check is a pure function of
// the caller and the resource and returns nil or a forbidden error.
package access

import (
	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
)

// RequireRole allows the caller when its role is one of allowed.
func RequireRole(identity *models.User, allowed ...models.Role) error {
	if identity == nil {
		return errs.ErrUnauthenticated
	}
	for _, r := range allowed {
		if identity.Role == r {
			return nil
		}
	}
	return errs.Forbidden("Not authorized")
}

// RequireAdmin gates the administrative endpoints.
func RequireAdmin(identity *models.User) error {
	return RequireRole(identity, models.RoleAdmin)
}

// RequireVehicleOwner allows the caller only when it owns vehicle.
// Admins get no bypass here: ownership rules protect owner-only
// mutations.
func RequireVehicleOwner(identity *models.User, vehicle *models.Vehicle) error {
	if identity == nil {
		return errs.ErrUnauthenticated
	}
	if vehicle == nil || vehicle.OwnerID != identity.ID {
		return errs.Forbidden("Not authorized to manage this vehicle")
	}
	return nil
}

// RequireTripOwner allows the caller only when it owns the vehicle the
// trip runs on, which is what managing a booking on that trip needs.
func RequireTripOwner(identity *models.User, tripVehicle *models.Vehicle) error {
	if err := RequireVehicleOwner(identity, tripVehicle); err != nil {
		if errs.KindOf(err) == errs.KindForbidden {
			return errs.Forbidden("Not authorized to manage this booking")
		}
		return err
	}
	return nil
}

// CanSeeAll reports whether listings should skip the per-user scope.
func CanSeeAll(identity *models.User) bool {
	return identity != nil && identity.Role == models.RoleAdmin
}
