package models

import "time"

type NotificationType string

const (
	NotificationGeneral NotificationType = "general"
	NotificationEmail   NotificationType = "email"
	NotificationSMS     NotificationType = "sms"
	NotificationInApp   NotificationType = "in-app"
)

// Notification is the durable in-app copy of a message. The only
// mutation after creation is flipping IsRead.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	User      *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message   string           `gorm:"not null" json:"message"`
	Type      NotificationType `gorm:"not null;default:'general'" json:"type"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
