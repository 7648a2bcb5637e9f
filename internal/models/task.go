package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint  `gorm:"not null;index"`
	MilestoneID *uint `gorm:"index"`
	AssigneeID  *uint `gorm:"index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:todo"`   // "todo", "in_progress", "done"
	Priority    string `gorm:"not null;default:medium"` // "low", "medium", "high"
	Overdue     bool   `gorm:"not null;default:false"`
	DueDate     *time.Time

	// Relationships
	Project   Project    `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Milestone *Milestone `gorm:"foreignKey:MilestoneID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Assignee  *User      `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
