package models

import (
	"time"

	"gorm.io/gorm"
)

type WorkExperience struct {
	gorm.Model

	ProfileID uint   `gorm:"not null;index"`
	Company   string `gorm:"not null"`
	Title     string `gorm:"not null"`
	StartDate time.Time
	EndDate   *time.Time // nil while the position is current
	Summary   string

	// Relationships
	Profile UserProfile `gorm:"foreignKey:ProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
