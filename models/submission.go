package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission is a participant's graded attempt. The score is fixed at
// submission time and the row is never updated afterward; Answers keeps the
// raw submitted JSON so reviews can be rebuilt from it.
type Submission struct {
	ID            string         `json:"id" gorm:"type:uuid;primaryKey"`
	ParticipantID string         `json:"participant_id" gorm:"type:uuid;not null;index"`
	QuizID        string         `json:"quiz_id" gorm:"type:uuid;not null;index"`
	Answers       datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	Score         int            `json:"score" gorm:"not null;default:0"`
	SubmittedAt   time.Time      `json:"submitted_at" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Participant Participant `json:"participant,omitempty"`
	Quiz        Quiz        `json:"quiz,omitempty"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// AnswerFor decodes the submitted value for a question id. Questions the
// participant never answered decode to an empty value.
func (s *Submission) AnswerFor(questionID string) AnswerValue {
	return DecodeAnswerMap([]byte(s.Answers))[questionID]
}
