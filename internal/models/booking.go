package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusAccepted || s == BookingStatusRejected
}

// ParseDecision accepts the two statuses an owner may set.
func ParseDecision(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingStatusAccepted, BookingStatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// CanTransition enforces pending -> {accepted, rejected}; both targets
// are terminal.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	return s == BookingStatusPending && (to == BookingStatusAccepted || to == BookingStatusRejected)
}

type Booking struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	BookingReference string        `gorm:"uniqueIndex;not null" json:"booking_reference"`
	TripID           uint          `gorm:"not null;index" json:"trip_id"`
	Trip             *Trip         `gorm:"foreignKey:TripID;constraint:OnDelete:RESTRICT" json:"-"`
	CustomerID       uint          `gorm:"not null;index" json:"customer_id"`
	Customer         *User         `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"-"`
	CargoSize        string        `gorm:"not null" json:"cargo_size"`
	TotalPrice       float64       `gorm:"not null" json:"total_price"`
	Status           BookingStatus `gorm:"not null;default:'pending';check:chk_bookings_status,status IN ('pending','accepted','rejected')" json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}
