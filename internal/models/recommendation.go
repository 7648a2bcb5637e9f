package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Recommendation struct {
	gorm.Model

	UserID      uint           `gorm:"not null;uniqueIndex"`
	Source      string         `gorm:"not null"` // "llm", "fallback"
	Payload     datatypes.JSON `gorm:"type:jsonb"` // [{"project_id": 1, "reason": "..."}]
	GeneratedAt time.Time      `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
