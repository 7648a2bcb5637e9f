package models

import "gorm.io/gorm"

type PortfolioProject struct {
	gorm.Model

	ProfileID uint   `gorm:"not null;index"`
	Title     string `gorm:"not null"`
	Summary   string
	URL       string

	// Relationships
	Profile UserProfile `gorm:"foreignKey:ProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
