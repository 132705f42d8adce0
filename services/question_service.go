package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizdeck/models"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionService struct {
	db    *gorm.DB
	cache *QuizCache
}

func NewQuestionService(db *gorm.DB, cache *QuizCache) *QuestionService {
	return &QuestionService{db: db, cache: cache}
}

type QuestionRequest struct {
	Content string         `json:"content" binding:"required"`
	Type    string         `json:"type" binding:"required"`
	Choices []string       `json:"choices"`
	Answer  datatypes.JSON `json:"answer" binding:"required"`
	Points  int            `json:"points"`
	Order   int            `json:"order"`
}

// AddQuestion appends a question to a quiz the user administers.
func (s *QuestionService) AddQuestion(ctx context.Context, code, userID string, req *QuestionRequest) (*models.Question, error) {
	quiz, err := ownedQuiz(s.db, code, userID)
	if err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	points := req.Points
	if points <= 0 {
		points = 1
	}

	question := models.Question{
		QuizID:  quiz.ID,
		Content: req.Content,
		Type:    req.Type,
		Choices: pq.StringArray(req.Choices),
		Answer:  req.Answer,
		Points:  points,
		Order:   req.Order,
	}
	if err := s.db.Create(&question).Error; err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, code)
	return &question, nil
}

// EditQuestion updates a question. Once any submission exists for the quiz
// the question set is frozen: scores were computed against it and must stay
// reproducible.
func (s *QuestionService) EditQuestion(ctx context.Context, code, questionID, userID string, req *QuestionRequest) (*models.Question, error) {
	quiz, err := ownedQuiz(s.db, code, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnlocked(quiz.ID); err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	var question models.Question
	if err := s.db.Where("id = ? AND quiz_id = ?", questionID, quiz.ID).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	question.Content = req.Content
	question.Type = req.Type
	question.Choices = pq.StringArray(req.Choices)
	question.Answer = req.Answer
	if req.Points > 0 {
		question.Points = req.Points
	}
	question.Order = req.Order

	if err := s.db.Save(&question).Error; err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, code)
	return &question, nil
}

// DeleteQuestion removes a question, subject to the same freeze rule.
func (s *QuestionService) DeleteQuestion(ctx context.Context, code, questionID, userID string) error {
	quiz, err := ownedQuiz(s.db, code, userID)
	if err != nil {
		return err
	}
	if err := s.ensureUnlocked(quiz.ID); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND quiz_id = ?", questionID, quiz.ID).
		Delete(&models.Question{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuestionNotFound
	}

	s.cache.Invalidate(ctx, code)
	return nil
}

func (s *QuestionService) ensureUnlocked(quizID string) error {
	var count int64
	if err := s.db.Model(&models.Submission{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrQuestionLocked
	}
	return nil
}

// validateQuestion enforces the authoring invariants: known type, choices
// present for choice types, and every canonical answer drawn from the
// choices.
func validateQuestion(req *QuestionRequest) error {
	answer := models.DecodeAnswerValue([]byte(req.Answer))

	switch req.Type {
	case models.QuestionTypeSingleChoice, models.QuestionTypeMultipleChoice:
		if len(req.Choices) < 2 {
			return fmt.Errorf("%w: choice questions need at least two choices", ErrValidation)
		}
		if !choiceListed(req.Choices, answer.Scalar()) {
			return fmt.Errorf("%w: answer must be one of the choices", ErrValidation)
		}
	case models.QuestionTypeMultiChoice:
		if len(req.Choices) < 2 {
			return fmt.Errorf("%w: choice questions need at least two choices", ErrValidation)
		}
		selections := answer.List()
		if len(selections) == 0 {
			return fmt.Errorf("%w: multi-choice answer must be a non-empty array", ErrValidation)
		}
		for _, sel := range selections {
			if !choiceListed(req.Choices, sel) {
				return fmt.Errorf("%w: answer %q is not one of the choices", ErrValidation, sel)
			}
		}
	case models.QuestionTypeText:
		if answer.IsList() || strings.TrimSpace(answer.Scalar()) == "" {
			return fmt.Errorf("%w: text answer must be a non-empty string", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrValidation, req.Type)
	}
	return nil
}

func choiceListed(choices []string, value string) bool {
	for _, c := range choices {
		if strings.EqualFold(c, value) {
			return true
		}
	}
	return false
}
