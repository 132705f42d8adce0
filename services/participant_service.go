package services

import (
	"context"
	"errors"

	"quizdeck/models"

	"gorm.io/gorm"
)

type ParticipantService struct {
	db    *gorm.DB
	cache *QuizCache
}

func NewParticipantService(db *gorm.DB, cache *QuizCache) *ParticipantService {
	return &ParticipantService{db: db, cache: cache}
}

type JoinQuizRequest struct {
	Username string `json:"username"`
}

// JoinQuiz registers a participant in an active quiz. Logged-in users get
// their account linked; everyone else joins anonymously. Names are unique
// per quiz because guest result lookup is by name.
func (s *ParticipantService) JoinQuiz(ctx context.Context, code, username, userID, userName string) (*models.Participant, error) {
	var quiz models.Quiz
	if err := s.db.Where("code = ?", code).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.Active {
		return nil, ErrQuizNotActive
	}

	if username == "" {
		username = userName
	}
	if username == "" {
		username = "Anonymous"
	}

	var existing models.Participant
	if err := s.db.Where("quiz_id = ? AND username = ?", quiz.ID, username).
		First(&existing).Error; err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	participant := models.Participant{
		QuizID:   quiz.ID,
		Username: username,
	}
	if userID != "" {
		participant.UserID = &userID
	}

	if err := s.db.Create(&participant).Error; err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, code)
	return &participant, nil
}
