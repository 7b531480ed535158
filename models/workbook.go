package models

import (
	"time"

	"gorm.io/gorm"
)

// Workbook represents a flashcard deck placed somewhere in its owner's tree
type Workbook struct {
	ID          string    `gorm:"primaryKey;size:21" json:"id"`
	Name        string    `gorm:"not null;size:50;uniqueIndex:idx_workbooks_sibling,priority:3" json:"name"`
	Description string    `gorm:"size:300" json:"description"`
	UserID      string    `gorm:"not null;size:21;index;uniqueIndex:idx_workbooks_sibling,priority:1" json:"userId"`
	ParentID    *string   `gorm:"size:21;index;uniqueIndex:idx_workbooks_sibling,priority:2" json:"parentId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Cards    []Card         `gorm:"foreignKey:WorkbookID;constraint:OnDelete:CASCADE;" json:"cards,omitempty"`
	Sessions []StudySession `gorm:"foreignKey:WorkbookID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (w *Workbook) BeforeCreate(tx *gorm.DB) error {
	return assignID(&w.ID)
}
