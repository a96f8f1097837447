package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/smarttrans/smarttrans-backend/internal/database"
	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/models"
)

// Recipient is the contact data a notification needs.
type Recipient struct {
	UserID uint
	Email  string
	Phone  string
	Name   string
}

func RecipientFor(u *models.User) Recipient {
	return Recipient{UserID: u.ID, Email: u.Email, Phone: u.Phone, Name: u.FullName}
}

// NotificationSink accepts fire-and-forget notifications.
type NotificationSink interface {
	Notify(ctx context.Context, to Recipient, message string)
}

// Notifier stores the in-app copy of every notification and then hands
// it to the outbound channels. It never fails the caller.
type Notifier struct {
	db       *gorm.DB
	outbound *Outbound
	log      *slog.Logger
}

func NewNotifier(db *gorm.DB, outbound *Outbound, log *slog.Logger) *Notifier {
	return &Notifier{db: db, outbound: outbound, log: log.With("component", "notification_service")}
}

func (n *Notifier) Notify(ctx context.Context, to Recipient, message string) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("notification panicked", "user_id", to.UserID, "panic", r)
		}
	}()

	// The caller may already have answered its client; finish anyway.
	ctx = context.WithoutCancel(ctx)

	n.log.Info("SENDING SMS", "phone", to.Phone, "message", message)
	n.log.Info("SENDING EMAIL", "email", to.Email, "message", message)

	notification := &models.Notification{
		UserID:  to.UserID,
		Message: message,
		Type:    models.NotificationInApp,
	}
	if err := n.db.WithContext(ctx).Create(notification).Error; err != nil {
		n.log.Error("failed to save notification", "user_id", to.UserID, "error", err)
		notification = nil
	}

	if n.outbound != nil {
		n.outbound.Dispatch(ctx, Delivery{Recipient: to, Message: message, Notification: notification})
	}
}

// ListForUser returns the caller's notifications, newest first.
func (n *Notifier) ListForUser(ctx context.Context, identity *models.User) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.db.WithContext(ctx).
		Where("user_id = ?", identity.ID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, errs.Internal("failed to fetch notifications", err)
	}
	return notifications, nil
}

// MarkRead flips is_read on one of the caller's notifications. Someone
// else's notification is reported as missing.
func (n *Notifier) MarkRead(ctx context.Context, identity *models.User, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := n.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, identity.ID).
		First(&notification).Error
	if database.IsNotFound(err) {
		return nil, errs.NotFound("Notification not found")
	}
	if err != nil {
		return nil, errs.Internal("failed to fetch notification", err)
	}

	if !notification.IsRead {
		if err := n.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error; err != nil {
			return nil, errs.Internal("failed to update notification", err)
		}
		notification.IsRead = true
	}
	return &notification, nil
}
