package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"quizdeck/models"

	"gorm.io/gorm"
)

// codeAlphabet deliberately drops visually confusable characters (0/O, 1/I/L)
// so codes survive being read aloud or copied from a projector.
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

type QuizService struct {
	db    *gorm.DB
	cache *QuizCache
	now   func() time.Time
}

func NewQuizService(db *gorm.DB, cache *QuizCache) *QuizService {
	return &QuizService{db: db, cache: cache, now: time.Now}
}

type CreateQuizRequest struct {
	Title     string `json:"title" binding:"required"`
	AdminName string `json:"adminName"`
}

type UpdateQuizRequest struct {
	Title    string     `json:"title"`
	Deadline *time.Time `json:"deadline"`
	Active   *bool      `json:"active"`
}

// GenerateCode returns a fresh join code. Uniqueness is enforced by the
// caller (lookup plus unique index), not here.
func GenerateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(fmt.Sprintf("generate quiz code: %v", err))
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}

// CreateQuiz creates a quiz with a unique code. Two concurrent creations may
// race on the same candidate code; the unique index catches the loser and we
// simply try another code.
func (s *QuizService) CreateQuiz(userID string, req *CreateQuizRequest) (*models.Quiz, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code := GenerateCode()

		var existing models.Quiz
		err := s.db.Where("code = ?", code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		quiz := models.Quiz{
			Code:      code,
			Title:     req.Title,
			AdminName: req.AdminName,
			Active:    true,
		}
		if userID != "" {
			quiz.AdminID = &userID
		}

		if err := s.db.Create(&quiz).Error; err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return &quiz, nil
	}
	return nil, errors.New("could not allocate a unique quiz code")
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// PublicQuiz is the answer-free view served to participants.
type PublicQuiz struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Title        string           `json:"title"`
	AdminName    string           `json:"adminName"`
	Active       bool             `json:"active"`
	Deadline     *time.Time       `json:"deadline"`
	Started      bool             `json:"started"`
	Participants []string         `json:"participants"`
	Questions    []PublicQuestion `json:"questions"`
}

type PublicQuestion struct {
	ID      string   `json:"id"`
	Order   int      `json:"order"`
	Content string   `json:"content"`
	Type    string   `json:"type"`
	Choices []string `json:"choices"`
	Points  int      `json:"points"`
}

// GetQuizPublic serves the participant-facing view, answers stripped, from
// the snapshot cache when warm.
func (s *QuizService) GetQuizPublic(ctx context.Context, code string) (*PublicQuiz, error) {
	return s.cache.GetPublicQuiz(ctx, code, func() (*PublicQuiz, error) {
		return s.loadPublicQuiz(code)
	})
}

func (s *QuizService) loadPublicQuiz(code string) (*PublicQuiz, error) {
	var quiz models.Quiz
	if err := s.db.Where("code = ?", code).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Participants").
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	view := &PublicQuiz{
		ID:           quiz.ID,
		Code:         quiz.Code,
		Title:        quiz.Title,
		AdminName:    quiz.AdminName,
		Active:       quiz.Active,
		Deadline:     quiz.Deadline,
		Started:      quiz.Started,
		Participants: make([]string, 0, len(quiz.Participants)),
		Questions:    make([]PublicQuestion, 0, len(quiz.Questions)),
	}
	for _, p := range quiz.Participants {
		view.Participants = append(view.Participants, p.Username)
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, PublicQuestion{
			ID:      q.ID,
			Order:   q.Order,
			Content: q.Content,
			Type:    q.Type,
			Choices: []string(q.Choices),
			Points:  q.Points,
		})
	}
	return view, nil
}

// GetQuizByCode loads the full quiz row, canonical answers included. For
// internal and owner paths only.
func (s *QuizService) GetQuizByCode(code string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.Where("code = ?", code).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// UpdateQuiz applies partial updates to title, deadline, and active flag.
func (s *QuizService) UpdateQuiz(ctx context.Context, code, userID string, req *UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := ownedQuiz(s.db, code, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Deadline != nil {
		updates["deadline"] = req.Deadline
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := s.db.Model(quiz).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.cache.Invalidate(ctx, code)
	return quiz, nil
}

// StartQuiz flips the started flag so waiting participants can begin.
func (s *QuizService) StartQuiz(ctx context.Context, code, userID string) (*models.Quiz, error) {
	quiz, err := ownedQuiz(s.db, code, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(quiz).Update("started", true).Error; err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, code)
	return quiz, nil
}

// GetUserQuizzes lists the quizzes a user administers, newest first.
func (s *QuizService) GetUserQuizzes(userID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.Where("admin_id = ?", userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

// ownedQuiz loads a quiz by code and checks the caller may administer it.
// Quizzes created without an account have no admin and stay open to anyone.
func ownedQuiz(db *gorm.DB, code, userID string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := db.Where("code = ?", code).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.AdminID != nil && !quiz.OwnedBy(userID) {
		return nil, ErrNotAuthorized
	}
	return &quiz, nil
}
