package models

import "time"

type TripStatus string

// Only TripStatusOpen is ever assigned. The other states are reserved;
// no operation moves a trip into them.
const (
	TripStatusOpen      TripStatus = "open"
	TripStatusFull      TripStatus = "full"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

type Trip struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	VehicleID         uint       `gorm:"not null;index" json:"vehicle_id"`
	Vehicle           *Vehicle   `gorm:"foreignKey:VehicleID;constraint:OnDelete:RESTRICT" json:"-"`
	StartLocation     string     `gorm:"not null" json:"start_location"`
	EndLocation       string     `gorm:"not null" json:"end_location"`
	StartDatetime     time.Time  `gorm:"not null" json:"start_datetime"`
	AvailableCapacity string     `gorm:"not null" json:"available_capacity"`
	PricePerUnit      float64    `gorm:"not null" json:"price_per_unit"`
	Description       string     `json:"description"`
	Status            TripStatus `gorm:"not null;default:'open';index;check:chk_trips_status,status IN ('open','full','completed','cancelled')" json:"status"`
}

func (Trip) TableName() string {
	return "trips"
}

// Bookable reports whether new bookings may be taken.
func (t *Trip) Bookable() bool {
	return t.Status == TripStatusOpen
}
