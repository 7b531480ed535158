package models

import (
	"time"

	"gorm.io/gorm"
)

// Card represents an individual question/answer pair
type Card struct {
	ID         string    `gorm:"primaryKey;size:21" json:"id"`
	WorkbookID string    `gorm:"not null;size:21;index" json:"workbookId"`
	Question   string    `gorm:"not null;size:2000" json:"question"`
	Answer     string    `gorm:"not null;size:2000" json:"answer"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	return assignID(&c.ID)
}
