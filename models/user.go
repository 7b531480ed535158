package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system, keyed by the e-mail the identity provider verified
type User struct {
	ID        string    `gorm:"primaryKey;size:21" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:320" json:"email"`
	Name      string    `gorm:"size:100" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	return assignID(&u.ID)
}
