package models

import "gorm.io/gorm"

type Skill struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"`
}

type UserSkill struct {
	gorm.Model

	UserID      uint `gorm:"not null;uniqueIndex:idx_user_skill"`
	SkillID     uint `gorm:"not null;uniqueIndex:idx_user_skill"`
	Proficiency int  `gorm:"not null;default:1"` // 1 (beginner) to 5 (expert)

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Skill Skill `gorm:"foreignKey:SkillID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type ProjectSkill struct {
	gorm.Model

	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_skill"`
	SkillID   uint `gorm:"not null;uniqueIndex:idx_project_skill"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Skill   Skill   `gorm:"foreignKey:SkillID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
