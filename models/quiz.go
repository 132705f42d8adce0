package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	Code      string         `json:"code" gorm:"uniqueIndex;not null"`
	Title     string         `json:"title" gorm:"not null"`
	AdminName string         `json:"admin_name"`
	AdminID   *string        `json:"admin_id" gorm:"type:uuid;index"`
	Deadline  *time.Time     `json:"deadline"`
	Active    bool           `json:"active" gorm:"not null;default:true"`
	Started   bool           `json:"started" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Admin        *User         `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
	Questions    []Question    `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:QuizID"`
	Submissions  []Submission  `json:"submissions,omitempty" gorm:"foreignKey:QuizID"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether userID is the quiz admin. Quizzes created without
// an account have no admin and are owned by nobody.
func (q *Quiz) OwnedBy(userID string) bool {
	return q.AdminID != nil && userID != "" && *q.AdminID == userID
}
