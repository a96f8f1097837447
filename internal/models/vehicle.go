package models

type Vehicle struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	OwnerID            uint   `gorm:"not null;index" json:"owner_id"`
	Owner              *User  `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT" json:"-"`
	Type               string `gorm:"not null" json:"type"`
	Capacity           string `gorm:"not null" json:"capacity"`
	RegistrationNumber string `gorm:"uniqueIndex;not null" json:"registration_number"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
