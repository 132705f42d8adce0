package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Participant struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	QuizID    string         `json:"quiz_id" gorm:"type:uuid;not null;index"`
	Username  string         `json:"username" gorm:"not null"`
	UserID    *string        `json:"user_id" gorm:"type:uuid;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Quiz        Quiz         `json:"quiz,omitempty"`
	User        *User        `json:"user,omitempty"`
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:ParticipantID"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
