package models

import (
	"time"

	"gorm.io/gorm"
)

// Directory is a folder node in a user's tree. A nil ParentID means root level.
type Directory struct {
	ID        string    `gorm:"primaryKey;size:21" json:"id"`
	Name      string    `gorm:"not null;size:50;uniqueIndex:idx_directories_sibling,priority:3" json:"name"`
	UserID    string    `gorm:"not null;size:21;index;uniqueIndex:idx_directories_sibling,priority:1" json:"userId"`
	ParentID  *string   `gorm:"size:21;index;uniqueIndex:idx_directories_sibling,priority:2" json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Directory) BeforeCreate(tx *gorm.DB) error {
	return assignID(&d.ID)
}
