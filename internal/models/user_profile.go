package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserProfile struct {
	gorm.Model

	UserID         uint   `gorm:"not null;uniqueIndex"`
	Headline       string
	Bio            string
	School         string
	Program        string
	GraduationYear int
	WeeklyHours    int            // Availability in hours per week
	Links          datatypes.JSON `gorm:"type:jsonb"` // e.g. {"github": "...", "linkedin": "..."}
	Visibility     string         `gorm:"not null;default:public"` // "public", "private"

	// Relationships
	User              User               `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	WorkExperiences   []WorkExperience   `gorm:"foreignKey:ProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	PortfolioProjects []PortfolioProject `gorm:"foreignKey:ProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
