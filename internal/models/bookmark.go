package models

import "gorm.io/gorm"

type Bookmark struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_user_bookmark"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_user_bookmark"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
