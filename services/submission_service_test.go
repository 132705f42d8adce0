package services

import (
	"errors"
	"testing"
	"time"

	"quizdeck/models"

	"gorm.io/datatypes"
)

type fakeSubmissionStore struct {
	quizzes      map[string]*models.Quiz
	participants map[string]*models.Participant
	created      []*models.Submission
}

func (s *fakeSubmissionStore) QuizByCode(code string) (*models.Quiz, error) {
	quiz, ok := s.quizzes[code]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

func (s *fakeSubmissionStore) ParticipantByID(id string) (*models.Participant, error) {
	participant, ok := s.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return participant, nil
}

func (s *fakeSubmissionStore) CreateSubmission(submission *models.Submission) error {
	s.created = append(s.created, submission)
	return nil
}

func newRecorderForTest(deadline *time.Time, now time.Time) (*SubmissionService, *fakeSubmissionStore) {
	store := &fakeSubmissionStore{
		quizzes: map[string]*models.Quiz{
			"ABC234": {
				ID:       "quiz-1",
				Code:     "ABC234",
				Deadline: deadline,
				Questions: []models.Question{
					choiceQuestion("q1", models.QuestionTypeSingleChoice, 2, `"Paris"`, "London", "Paris"),
					choiceQuestion("q2", models.QuestionTypeMultiChoice, 10, `["a","b","c"]`, "a", "b", "c", "x"),
				},
			},
		},
		participants: map[string]*models.Participant{
			"p1": {ID: "p1", QuizID: "quiz-1", Username: "Alice"},
		},
	}
	service := &SubmissionService{store: store, now: func() time.Time { return now }}
	return service, store
}

func TestSubmitAnswersGradesAndPersists(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service, store := newRecorderForTest(nil, now)

	answers := datatypes.JSON(`{"q1": "paris", "q2": ["a","b","x"]}`)
	submission, score, detail, err := service.SubmitAnswers("ABC234", &SubmitAnswersRequest{
		ParticipantID: "p1",
		Answers:       answers,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if score != 8 {
		t.Fatalf("score = %d, want 8", score)
	}
	if len(detail) != 2 {
		t.Fatalf("expected a detail entry per question, got %d", len(detail))
	}
	if len(store.created) != 1 {
		t.Fatalf("expected exactly one submission row, got %d", len(store.created))
	}
	if submission.Score != 8 || submission.QuizID != "quiz-1" || submission.ParticipantID != "p1" {
		t.Fatalf("unexpected submission: %+v", submission)
	}
	if !submission.SubmittedAt.Equal(now) {
		t.Fatalf("submittedAt = %v, want %v", submission.SubmittedAt, now)
	}
	if string(submission.Answers) != string(answers) {
		t.Fatalf("raw answers must be stored verbatim, got %s", submission.Answers)
	}
}

func TestSubmitAnswersDeadlineExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(-time.Minute)
	service, store := newRecorderForTest(&deadline, now)

	_, _, _, err := service.SubmitAnswers("ABC234", &SubmitAnswersRequest{
		ParticipantID: "p1",
		Answers:       datatypes.JSON(`{"q1": "paris"}`),
	})
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("a rejected submission must not be persisted, got %d rows", len(store.created))
	}
}

func TestSubmitAnswersAtDeadlineInstant(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := now
	service, store := newRecorderForTest(&deadline, now)

	_, _, _, err := service.SubmitAnswers("ABC234", &SubmitAnswersRequest{
		ParticipantID: "p1",
		Answers:       datatypes.JSON(`{"q1": "paris"}`),
	})
	if err != nil {
		t.Fatalf("the deadline instant itself still accepts: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one submission row, got %d", len(store.created))
	}
}

func TestSubmitAnswersPreconditionOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	service, store := newRecorderForTest(&expired, now)

	req := &SubmitAnswersRequest{ParticipantID: "ghost", Answers: datatypes.JSON(`{}`)}

	// Unknown quiz wins over everything else.
	_, _, _, err := service.SubmitAnswers("NOPE99", req)
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}

	// Unknown participant is reported before the deadline check, even though
	// this quiz's deadline is long gone.
	_, _, _, err = service.SubmitAnswers("ABC234", req)
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}

	if len(store.created) != 0 {
		t.Fatalf("failed preconditions must not write rows, got %d", len(store.created))
	}
}
