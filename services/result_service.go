package services

import (
	"errors"
	"math"
	"sort"
	"time"

	"quizdeck/models"

	"gorm.io/gorm"
)

type ResultService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewResultService(db *gorm.DB) *ResultService {
	return &ResultService{db: db, now: time.Now}
}

// LeaderboardEntry is one ranked submission. Score is the percentage of the
// quiz's total points; RawScore is the summed earned points.
type LeaderboardEntry struct {
	ID            string              `json:"id"`
	ParticipantID string              `json:"participantId"`
	Participant   *models.Participant `json:"participant,omitempty"`
	RawScore      int                 `json:"rawScore"`
	Score         int                 `json:"score"`
	SubmittedAt   time.Time           `json:"submittedAt"`
}

type ResultsQuizSummary struct {
	Title         string     `json:"title"`
	Deadline      *time.Time `json:"deadline"`
	QuestionCount int        `json:"questionCount"`
}

type QuizResults struct {
	Submissions      []LeaderboardEntry `json:"submissions"`
	TotalSubmissions int                `json:"totalSubmissions"`
	TotalPoints      int                `json:"totalPoints"`
	MySubmission     *LeaderboardEntry  `json:"mySubmission"`
	Preview          bool               `json:"preview"`
	Quiz             ResultsQuizSummary `json:"quiz"`
}

// DeadlinePassed reports whether results are final. A quiz with no deadline
// is open-book: results are visible from the moment it exists.
func DeadlinePassed(quiz *models.Quiz, now time.Time) bool {
	return quiz.Deadline == nil || !quiz.Deadline.After(now)
}

// CanSeeResults is the visibility gate. Owners may always look (as a
// preview before the deadline); everyone else waits for the deadline.
func CanSeeResults(quiz *models.Quiz, isOwner bool, now time.Time) bool {
	return isOwner || DeadlinePassed(quiz, now)
}

// TotalPoints sums the point values of a question set.
func TotalPoints(questions []models.Question) int {
	total := 0
	for i := range questions {
		total += questions[i].Points
	}
	return total
}

// Percentage normalizes a raw score against the quiz total, rounded to the
// nearest whole percent. Zero-point quizzes report zero.
func Percentage(rawScore, totalPoints int) int {
	if totalPoints <= 0 {
		return 0
	}
	return int(math.Round(float64(rawScore) / float64(totalPoints) * 100))
}

// BuildLeaderboard ranks submissions: raw score descending, earlier
// submission first on ties, submission id as the final tie-break so the
// order is a total order. The returned slice index + 1 is the rank.
func BuildLeaderboard(questions []models.Question, submissions []models.Submission) ([]LeaderboardEntry, int) {
	totalPoints := TotalPoints(questions)

	entries := make([]LeaderboardEntry, 0, len(submissions))
	for i := range submissions {
		sub := &submissions[i]
		entry := LeaderboardEntry{
			ID:            sub.ID,
			ParticipantID: sub.ParticipantID,
			RawScore:      sub.Score,
			Score:         Percentage(sub.Score, totalPoints),
			SubmittedAt:   sub.SubmittedAt,
		}
		if sub.Participant.ID != "" {
			participant := sub.Participant
			entry.Participant = &participant
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RawScore != entries[j].RawScore {
			return entries[i].RawScore > entries[j].RawScore
		}
		if !entries[i].SubmittedAt.Equal(entries[j].SubmittedAt) {
			return entries[i].SubmittedAt.Before(entries[j].SubmittedAt)
		}
		return entries[i].ID < entries[j].ID
	})

	return entries, totalPoints
}

// GetResults builds the leaderboard for a quiz, gated on the deadline. The
// owner sees it early with Preview set; participants can pass their id to
// have their own entry surfaced alongside the full board.
func (s *ResultService) GetResults(code, viewerUserID, participantID string) (*QuizResults, error) {
	var quiz models.Quiz
	if err := s.db.Where("code = ?", code).
		Preload("Questions").
		Preload("Submissions").
		Preload("Submissions.Participant").
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	now := s.now()
	isOwner := quiz.OwnedBy(viewerUserID)
	if !CanSeeResults(&quiz, isOwner, now) {
		return nil, ErrResultsNotVisible
	}

	entries, totalPoints := BuildLeaderboard(quiz.Questions, quiz.Submissions)

	var mine *LeaderboardEntry
	if participantID != "" {
		for i := range entries {
			if entries[i].ParticipantID == participantID {
				mine = &entries[i]
				break
			}
		}
	}

	return &QuizResults{
		Submissions:      entries,
		TotalSubmissions: len(entries),
		TotalPoints:      totalPoints,
		MySubmission:     mine,
		Preview:          isOwner && !DeadlinePassed(&quiz, now),
		Quiz: ResultsQuizSummary{
			Title:         quiz.Title,
			Deadline:      quiz.Deadline,
			QuestionCount: len(quiz.Questions),
		},
	}, nil
}

// QuestionReview is one question's row in a participant review. The
// canonical answer is withheld until results are final.
type QuestionReview struct {
	ID            string              `json:"id"`
	Content       string              `json:"content"`
	Type          string              `json:"type"`
	Choices       []string            `json:"choices"`
	CorrectAnswer *models.AnswerValue `json:"correctAnswer"`
	UserAnswer    models.AnswerValue  `json:"userAnswer"`
	IsCorrect     bool                `json:"isCorrect"`
	Points        int                 `json:"points"`
	EarnedPoints  int                 `json:"earnedPoints"`
}

type ReviewQuizSummary struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Code              string     `json:"code"`
	Deadline          *time.Time `json:"deadline"`
	TotalQuestions    int        `json:"totalQuestions"`
	TotalParticipants int        `json:"totalParticipants"`
	DeadlinePassed    bool       `json:"deadlinePassed"`
}

type ReviewSubmissionSummary struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	RawScore    int       `json:"rawScore"`
	TotalPoints int       `json:"totalPoints"`
	Percentage  int       `json:"percentage"`
	Rank        int       `json:"rank"`
}

type ParticipantReview struct {
	Quiz            ReviewQuizSummary       `json:"quiz"`
	Submission      ReviewSubmissionSummary `json:"submission"`
	QuestionResults []QuestionReview        `json:"questionResults"`
	Participant     ReviewParticipant       `json:"participant"`
}

type ReviewParticipant struct {
	Name string `json:"name"`
}

// GetGuestReview looks up a participant's attempt by quiz code and name.
// Guests only get it after the deadline, so canonical answers are always
// revealed here.
func (s *ResultService) GetGuestReview(code, participantName string) (*ParticipantReview, error) {
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

	if !DeadlinePassed(&quiz, s.now()) {
		return nil, ErrResultsNotVisible
	}

	var participant models.Participant
	if err := s.db.Where("quiz_id = ? AND username = ?", quiz.ID, participantName).
		First(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	var submission models.Submission
	if err := s.db.Where("participant_id = ?", participant.ID).
		Order("submitted_at DESC").
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	return s.buildReview(&quiz, &participant, &submission, true)
}

// GetLastAttempted returns the review for the authenticated user's most
// recent attempt across all quizzes. Canonical answers stay hidden while the
// quiz is still open.
func (s *ResultService) GetLastAttempted(userID string) (*ParticipantReview, error) {
	var submission models.Submission
	if err := s.db.
		Joins("JOIN participants ON participants.id = submissions.participant_id").
		Where("participants.user_id = ?", userID).
		Order("submissions.submitted_at DESC").
		Preload("Participant").
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	var quiz models.Quiz
	if err := s.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		First(&quiz, "id = ?", submission.QuizID).Error; err != nil {
		return nil, err
	}

	revealAnswers := DeadlinePassed(&quiz, s.now())
	return s.buildReview(&quiz, &submission.Participant, &submission, revealAnswers)
}

// buildReview reconstructs per-question correctness from the stored raw
// answers. It reuses the grader so a review can never disagree with the
// score the participant was given at submission time.
func (s *ResultService) buildReview(quiz *models.Quiz, participant *models.Participant, submission *models.Submission, revealAnswers bool) (*ParticipantReview, error) {
	answers := models.DecodeAnswerMap([]byte(submission.Answers))

	results := make([]QuestionReview, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		grade := GradeQuestion(q, answers[q.ID])

		review := QuestionReview{
			ID:           q.ID,
			Content:      q.Content,
			Type:         q.Type,
			Choices:      []string(q.Choices),
			UserAnswer:   grade.UserAnswer,
			IsCorrect:    grade.Correct,
			Points:       q.Points,
			EarnedPoints: grade.Earned,
		}
		if revealAnswers {
			canonical := grade.CorrectAnswer
			review.CorrectAnswer = &canonical
		}
		results = append(results, review)
	}

	var allSubmissions []models.Submission
	if err := s.db.Where("quiz_id = ?", quiz.ID).Find(&allSubmissions).Error; err != nil {
		return nil, err
	}
	entries, totalPoints := BuildLeaderboard(quiz.Questions, allSubmissions)

	rank := 0
	for i := range entries {
		if entries[i].ID == submission.ID {
			rank = i + 1
			break
		}
	}

	return &ParticipantReview{
		Quiz: ReviewQuizSummary{
			ID:                quiz.ID,
			Name:              quiz.Title,
			Code:              quiz.Code,
			Deadline:          quiz.Deadline,
			TotalQuestions:    len(quiz.Questions),
			TotalParticipants: len(entries),
			DeadlinePassed:    DeadlinePassed(quiz, s.now()),
		},
		Submission: ReviewSubmissionSummary{
			ID:          submission.ID,
			SubmittedAt: submission.SubmittedAt,
			RawScore:    submission.Score,
			TotalPoints: totalPoints,
			Percentage:  Percentage(submission.Score, totalPoints),
			Rank:        rank,
		},
		QuestionResults: results,
		Participant:     ReviewParticipant{Name: participant.Username},
	}, nil
}
