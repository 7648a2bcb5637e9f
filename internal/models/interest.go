package models

import "gorm.io/gorm"

type Interest struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"`
}

type UserInterest struct {
	gorm.Model

	UserID     uint `gorm:"not null;uniqueIndex:idx_user_interest"`
	InterestID uint `gorm:"not null;uniqueIndex:idx_user_interest"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Interest Interest `gorm:"foreignKey:InterestID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
