package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag names form a single pool shared by every user.
type Tag struct {
	ID   string `gorm:"type:char(36);primaryKey" json:"id"`
	Name string `gorm:"size:191;not null;uniqueIndex" json:"name"`
}

func (t *Tag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
