package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question types. "multiple-choice" is a legacy alias of "single-choice" kept
// for quizzes imported from older clients.
const (
	QuestionTypeSingleChoice   = "single-choice"
	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeMultiChoice    = "multi-choice"
	QuestionTypeText           = "text"
)

type Question struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	QuizID    string         `json:"quiz_id" gorm:"type:uuid;not null;index"`
	Content   string         `json:"content" gorm:"not null"`
	Type      string         `json:"type" gorm:"not null"`
	Choices   pq.StringArray `json:"choices" gorm:"type:text[]"`
	Answer    datatypes.JSON `json:"answer" gorm:"type:jsonb"`
	Points    int            `json:"points" gorm:"not null;default:1"`
	Order     int            `json:"order" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Quiz Quiz `json:"quiz,omitempty"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	return nil
}

// IsChoiceType reports whether the question presents a fixed choice list.
func (q *Question) IsChoiceType() bool {
	switch q.Type {
	case QuestionTypeSingleChoice, QuestionTypeMultipleChoice, QuestionTypeMultiChoice:
		return true
	}
	return false
}

// CanonicalAnswer decodes the stored answer JSON into its normalized form.
func (q *Question) CanonicalAnswer() AnswerValue {
	return DecodeAnswerValue([]byte(q.Answer))
}
