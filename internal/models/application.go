package models

import "gorm.io/gorm"

// Application is a user's request to join a project (direction "applied")
// or an owner's invitation to a user (direction "invited"). Both converge
// on the same accept/reject lifecycle.
type Application struct {
	gorm.Model

	UserID    uint   `gorm:"not null;index"`
	ProjectID uint   `gorm:"not null;index"`
	Direction string `gorm:"not null"`                 // "applied", "invited"
	Status    string `gorm:"not null;default:pending"` // "pending", "accepted", "rejected", "withdrawn"
	Message   string

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
