package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/smarttrans/smarttrans-backend/internal/access"
	"github.com/smarttrans/smarttrans-backend/internal/database"
	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
	"github.com/smarttrans/smarttrans-backend/pkg/utils"
)

// Accounts owns users: signup, login, token resolution, profiles and
// the admin operations on users.
type Accounts struct {
	db       *gorm.DB
	tokens   *utils.TokenManager
	notifier NotificationSink
	log      *slog.Logger
}

func NewAccounts(db *gorm.DB, tokens *utils.TokenManager, notifier NotificationSink, log *slog.Logger) *Accounts {
	return &Accounts{db: db, tokens: tokens, notifier: notifier, log: log}
}

type SignupInput struct {
	Email          string
	Password       string
	FullName       string
	Phone          string
	Role           models.Role
	ProfilePicture string
}

// Signup creates an owner or customer account.
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, errs.InvalidInput("email and password are required")
	}
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}
	if in.Role != models.RoleOwner && in.Role != models.RoleCustomer {
		return nil, errs.InvalidInput("role must be owner or customer")
	}

	db := a.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		a.log.Error("signup lookup failed", "error", err)
		return nil, errs.Internal("failed to create user", err)
	}
	if count > 0 {
		return nil, errs.Conflict("Email already registered")
	}

	user := &models.User{
		Email:          email,
		FullName:       in.FullName,
		Phone:          in.Phone,
		Role:           in.Role,
		ProfilePicture: in.ProfilePicture,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}

	if err := db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errs.Conflict("Email already registered")
		}
		a.log.Error("signup insert failed", "email", email, "error", err)
		return nil, errs.Internal("failed to create user", err)
	}

	a.notifier.Notify(ctx, RecipientFor(user),
		fmt.Sprintf("Welcome %s to SmartTrans! Your account is created.", displayName(user)))

	return user, nil
}

func displayName(u *models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// TokenResponse is what a successful login returns.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Role        models.Role `json:"role"`
	UserID      uint        `json:"user_id"`
}

// Login exchanges credentials for a bearer token. Unknown email and
// wrong password fail the same way.
func (a *Accounts) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if err != nil && !database.IsNotFound(err) {
		return nil, errs.Internal("failed to load user", err)
	}
	if err != nil || !models.VerifyPassword(password, user.HashedPassword) {
		return nil, errs.Unauthenticated("Incorrect email or password")
	}

	token, err := a.tokens.IssueToken(user.Email, user.Role, 0)
	if err != nil {
		return nil, errs.Internal("failed to generate token", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		UserID:      user.ID,
	}, nil
}

// Authenticate resolves a bearer token to its stored user.
func (a *Accounts) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = a.db.WithContext(ctx).Where("email = ?", claims.Subject).First(&user).Error
	if database.IsNotFound(err) {
		return nil, errs.UnknownSubject(claims.Subject)
	}
	if err != nil {
		return nil, errs.Internal("failed to load user", err)
	}
	return &user, nil
}

// ProfileUpdate lists the fields a user may change on their own
// account; nil means unchanged.
type ProfileUpdate struct {
	FullName       *string
	Phone          *string
	ProfilePicture *string
	Password       *string
}

func (a *Accounts) UpdateProfile(ctx context.Context, identity *models.User, upd ProfileUpdate) (*models.User, error) {
	user, err := a.loadUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		user.Phone = *upd.Phone
	}
	if upd.ProfilePicture != nil {
		user.ProfilePicture = *upd.ProfilePicture
	}
	if upd.Password != nil && *upd.Password != "" {
		if err := user.SetPassword(*upd.Password); err != nil {
			return nil, errs.Internal("failed to hash password", err)
		}
	}

	if err := a.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, errs.Internal("failed to update profile", err)
	}
	return user, nil
}

// SetProfilePicture stores the URL of an uploaded picture.
func (a *Accounts) SetProfilePicture(ctx context.Context, identity *models.User, url string) (*models.User, error) {
	return a.UpdateProfile(ctx, identity, ProfileUpdate{ProfilePicture: &url})
}

func (a *Accounts) loadUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).First(&user, id).Error
	if database.IsNotFound(err) {
		return nil, errs.NotFound("User not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to load user", err)
	}
	return &user, nil
}

func (a *Accounts) ListUsers(ctx context.Context, identity *models.User) ([]models.User, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}
	var users []models.User
	if err := a.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, errs.Internal("failed to fetch users", err)
	}
	return users, nil
}

func (a *Accounts) VerifyUser(ctx context.Context, identity *models.User, id uint) (*models.User, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}
	user, err := a.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.db.WithContext(ctx).Model(user).Update("is_verified", true).Error; err != nil {
		return nil, errs.Internal("failed to verify user", err)
	}
	user.IsVerified = true
	return user, nil
}

// DeleteUser removes an account that owns no vehicles and has made no
// bookings. Its notifications go with it. Admins cannot delete
// themselves.
func (a *Accounts) DeleteUser(ctx context.Context, identity *models.User, id uint) error {
	if err := access.RequireAdmin(identity); err != nil {
		return err
	}
	if identity.ID == id {
		return errs.InvalidInput("Cannot delete yourself")
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.First(&user, id).Error
		if database.IsNotFound(err) {
			return errs.NotFound("User not found")
		}
		if err != nil {
			return errs.Internal("failed to load user", err)
		}

		var vehicles, bookings int64
		if err := tx.Model(&models.Vehicle{}).Where("owner_id = ?", id).Count(&vehicles).Error; err != nil {
			return errs.Internal("failed to check vehicles", err)
		}
		if err := tx.Model(&models.Booking{}).Where("customer_id = ?", id).Count(&bookings).Error; err != nil {
			return errs.Internal("failed to check bookings", err)
		}
		if vehicles > 0 || bookings > 0 {
			return errs.Conflict(fmt.Sprintf(
				"User still has %d vehicle(s) and %d booking(s)", vehicles, bookings))
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return errs.Internal("failed to delete notifications", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return errs.Internal("failed to delete user", err)
		}
		return nil
	})
}

// Stats are the headline counts on the admin dashboard.
type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalVehicles int64 `json:"total_vehicles"`
	TotalTrips    int64 `json:"total_trips"`
	TotalBookings int64 `json:"total_bookings"`
}

func (a *Accounts) Stats(ctx context.Context, identity *models.User) (*Stats, error) {
	if err := access.RequireAdmin(identity); err != nil {
		return nil, err
	}

	db := a.db.WithContext(ctx)
	var s Stats
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.User{}, &s.TotalUsers},
		{&models.Vehicle{}, &s.TotalVehicles},
		{&models.Trip{}, &s.TotalTrips},
		{&models.Booking{}, &s.TotalBookings},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, errs.Internal("failed to compute stats", err)
		}
	}
	return &s, nil
}

// EnsureAdmin creates an admin account, or promotes an existing one.
// It is the only path that changes a stored role and is meant for
// operators, not for the HTTP API.
func (a *Accounts) EnsureAdmin(ctx context.Context, email, password, fullName string) (*models.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, errs.InvalidInput("email is required")
	}

	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case database.IsNotFound(err):
		if password == "" {
			return nil, false, errs.InvalidInput("password is required for a new admin")
		}
		user = models.User{Email: email, FullName: fullName, Role: models.RoleAdmin, IsVerified: true}
		if err := user.SetPassword(password); err != nil {
			return nil, false, err
		}
		if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, false, errs.Internal("failed to create admin", err)
		}
		return &user, true, nil

	case err != nil:
		return nil, false, errs.Internal("failed to load user", err)
	}

	user.Role = models.RoleAdmin
	user.IsVerified = true
	if fullName != "" {
		user.FullName = fullName
	}
	if password != "" {
		if err := user.SetPassword(password); err != nil {
			return nil, false, err
		}
	}
	if err := a.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, false, errs.Internal("failed to promote admin", err)
	}
	return &user, false, nil
}
