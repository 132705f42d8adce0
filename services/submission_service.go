package services

import (
	"errors"
	"time"

	"quizdeck/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionStore is the persistence the recorder needs: quiz and participant
// lookup plus submission creation. Lookups return the service sentinels for
// missing rows.
type SubmissionStore interface {
	QuizByCode(code string) (*models.Quiz, error)
	ParticipantByID(id string) (*models.Participant, error)
	CreateSubmission(submission *models.Submission) error
}

type SubmissionService struct {
	store SubmissionStore
	now   func() time.Time
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{store: &gormSubmissionStore{db: db}, now: time.Now}
}

type SubmitAnswersRequest struct {
	ParticipantID string         `json:"participantId" binding:"required"`
	Answers       datatypes.JSON `json:"answers" binding:"required"`
}

// SubmitAnswers grades and records one attempt. Preconditions are checked in
// order: quiz exists, participant exists, deadline not passed. On success
// exactly one submission row is written; quiz, question, and participant
// state stay untouched.
func (s *SubmissionService) SubmitAnswers(code string, req *SubmitAnswersRequest) (*models.Submission, int, map[string]GradeResult, error) {
	quiz, err := s.store.QuizByCode(code)
	if err != nil {
		return nil, 0, nil, err
	}

	participant, err := s.store.ParticipantByID(req.ParticipantID)
	if err != nil {
		return nil, 0, nil, err
	}

	now := s.now()
	if quiz.Deadline != nil && now.After(*quiz.Deadline) {
		return nil, 0, nil, ErrDeadlinePassed
	}

	total, detail := GradeSubmission(quiz.Questions, models.DecodeAnswerMap([]byte(req.Answers)))

	submission := models.Submission{
		ParticipantID: participant.ID,
		QuizID:        quiz.ID,
		Answers:       req.Answers,
		Score:         total,
		SubmittedAt:   now,
	}
	if err := s.store.CreateSubmission(&submission); err != nil {
		return nil, 0, nil, err
	}

	return &submission, total, detail, nil
}

type gormSubmissionStore struct {
	db *gorm.DB
}

func (s *gormSubmissionStore) QuizByCode(code string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.Where("code = ?", code).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

func (s *gormSubmissionStore) ParticipantByID(id string) (*models.Participant, error) {
	var participant models.Participant
	if err := s.db.First(&participant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &participant, nil
}

func (s *gormSubmissionStore) CreateSubmission(submission *models.Submission) error {
	return s.db.Create(submission).Error
}
