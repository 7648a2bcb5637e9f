package models

import (
	"time"

	"gorm.io/gorm"
)

type Milestone struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:planned"` // "planned", "active", "completed"
	IsActive    bool   `gorm:"not null;default:false"`   // At most one active milestone per project
	Overdue     bool   `gorm:"not null;default:false"`
	DueDate     *time.Time

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks   []Task  `gorm:"foreignKey:MilestoneID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
