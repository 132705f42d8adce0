package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newAIForTest(t *testing.T, reply string) *AIService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") == "" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		resp := aiGenerateResponse{}
		resp.Candidates = []struct {
			Content aiContent `json:"content"`
		}{
			{Content: aiContent{Parts: []aiPart{{Text: reply}}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	return &AIService{
		apiKey:   "test-key",
		model:    defaultAIModel,
		endpoint: server.URL + "/%s",
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGenerateQuizNotConfigured(t *testing.T) {
	svc := NewAIService("")
	_, err := svc.GenerateQuiz(context.Background(), "alice", &GenerateQuizRequest{Prompt: "European capitals quiz"})
	if !errors.Is(err, ErrAINotConfigured) {
		t.Fatalf("expected ErrAINotConfigured, got %v", err)
	}
}

func TestGenerateQuizPromptTooShort(t *testing.T) {
	svc := newAIForTest(t, "{}")
	_, err := svc.GenerateQuiz(context.Background(), "alice", &GenerateQuizRequest{Prompt: "short"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateQuiz(t *testing.T) {
	reply := "```json\n" + `{
		"title": "European Capitals",
		"description": "Test your geography",
		"questions": [
			{
				"content": "Capital of France?",
				"choices": ["London", "Paris", "Rome", "Berlin"],
				"correctAnswer": "Paris"
			}
		]
	}` + "\n```"
	svc := newAIForTest(t, reply)

	quiz, err := svc.GenerateQuiz(context.Background(), "alice", &GenerateQuizRequest{
		Prompt:        "A quiz about European capitals",
		QuestionCount: 1,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if quiz.Title != "European Capitals" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	q := quiz.Questions[0]
	if q.Type != "multiple-choice" || q.Points != 1 {
		t.Fatalf("missing defaults: %+v", q)
	}
	if !quiz.AIGenerated || quiz.GeneratedBy != "alice" || quiz.Difficulty != "medium" {
		t.Fatalf("missing metadata: %+v", quiz)
	}
}

func TestGenerateQuizRejectsBadStructure(t *testing.T) {
	cases := map[string]string{
		"no questions":          `{"title": "Empty", "questions": []}`,
		"three choices":         `{"title": "T", "questions": [{"content": "Q?", "choices": ["a","b","c"], "correctAnswer": "a"}]}`,
		"answer not in choices": `{"title": "T", "questions": [{"content": "Q?", "choices": ["a","b","c","d"], "correctAnswer": "e"}]}`,
		"not json":              `the model rambled instead`,
	}
	for name, reply := range cases {
		svc := newAIForTest(t, reply)
		_, err := svc.GenerateQuiz(context.Background(), "alice", &GenerateQuizRequest{Prompt: "A quiz about anything at all"})
		if err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"{\"a\":1}", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		if got := stripCodeFences(c.in); got != c.want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
