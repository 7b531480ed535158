package models

import (
	"time"

	"gorm.io/gorm"
)

// StudySession is one completed run through a workbook. AccuracyRate is 0-100.
type StudySession struct {
	ID           string    `gorm:"primaryKey;size:21" json:"id"`
	UserID       string    `gorm:"not null;size:21;index" json:"userId"`
	WorkbookID   string    `gorm:"not null;size:21;index" json:"workbookId"`
	AccuracyRate float64   `gorm:"not null" json:"accuracyRate"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`

	Records []StudyRecord `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE;" json:"records,omitempty"`
}

func (s *StudySession) BeforeCreate(tx *gorm.DB) error {
	return assignID(&s.ID)
}

// StudyRecord keeps a copy of the card text as it was studied. CardID is a
// plain lookup column so records outlive the card they point at.
type StudyRecord struct {
	ID        string    `gorm:"primaryKey;size:21" json:"id"`
	SessionID string    `gorm:"not null;size:21;index" json:"sessionId"`
	CardID    *string   `gorm:"size:21;index" json:"cardId"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	IsCorrect bool      `gorm:"not null" json:"isCorrect"`
	Question  string    `gorm:"not null" json:"question"`
	Answer    string    `gorm:"not null" json:"answer"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (r *StudyRecord) BeforeCreate(tx *gorm.DB) error {
	return assignID(&r.ID)
}
