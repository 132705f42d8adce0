package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAIModel   = "gemini-2.5-flash"
	aiEndpointFormat = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	maxAIQuestions   = 20
)

// ErrAINotConfigured is returned when quiz generation is requested without an
// API key.
var ErrAINotConfigured = errors.New("AI generation is not configured")

// AIService drafts quizzes from a topic prompt using the Gemini API. The
// result is returned to the caller for editing; nothing is persisted here.
type AIService struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		apiKey:   apiKey,
		model:    defaultAIModel,
		endpoint: aiEndpointFormat,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type GenerateQuizRequest struct {
	Prompt        string `json:"prompt" binding:"required"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
}

type GeneratedQuestion struct {
	Content       string   `json:"content"`
	Type          string   `json:"type"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correctAnswer"`
	Points        int      `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
}

type GeneratedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []GeneratedQuestion `json:"questions"`
	AIGenerated bool                `json:"aiGenerated"`
	Prompt      string              `json:"prompt"`
	Difficulty  string              `json:"difficulty"`
	GeneratedAt time.Time           `json:"generatedAt"`
	GeneratedBy string              `json:"generatedBy"`
}

func (s *AIService) Enabled() bool {
	return s.apiKey != ""
}

// GenerateQuiz asks the model for a quiz on the prompt and validates the
// structure before handing it back.
func (s *AIService) GenerateQuiz(ctx context.Context, userName string, req *GenerateQuizRequest) (*GeneratedQuiz, error) {
	if !s.Enabled() {
		return nil, ErrAINotConfigured
	}

	prompt := strings.TrimSpace(req.Prompt)
	if len(prompt) < 10 {
		return nil, fmt.Errorf("%w: prompt must be at least 10 characters long", ErrValidation)
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	count := req.QuestionCount
	if count < 1 {
		count = 5
	}
	if count > maxAIQuestions {
		count = maxAIQuestions
	}

	text, err := s.generateContent(ctx, buildQuizPrompt(prompt, difficulty, count))
	if err != nil {
		return nil, err
	}

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &quiz); err != nil {
		return nil, fmt.Errorf("parse AI response: %w", err)
	}

	if quiz.Title == "" || len(quiz.Questions) == 0 {
		return nil, errors.New("invalid quiz structure from AI")
	}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.Content == "" || len(q.Choices) != 4 || q.CorrectAnswer == "" {
			return nil, fmt.Errorf("invalid question %d structure from AI", i+1)
		}
		if !choiceListed(q.Choices, q.CorrectAnswer) {
			return nil, fmt.Errorf("question %d: correct answer not found in choices", i+1)
		}
		if q.Type == "" {
			q.Type = "multiple-choice"
		}
		if q.Points <= 0 {
			q.Points = 1
		}
	}

	quiz.AIGenerated = true
	quiz.Prompt = prompt
	quiz.Difficulty = difficulty
	quiz.GeneratedAt = time.Now()
	quiz.GeneratedBy = userName
	return &quiz, nil
}

type aiGenerateRequest struct {
	Contents []aiContent `json:"contents"`
}

type aiContent struct {
	Parts []aiPart `json:"parts"`
}

type aiPart struct {
	Text string `json:"text"`
}

type aiGenerateResponse struct {
	Candidates []struct {
		Content aiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *AIService) generateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(aiGenerateRequest{
		Contents: []aiContent{{Parts: []aiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf(s.endpoint, s.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call AI API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed aiGenerateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode AI API response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("AI API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API returned status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("AI API returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildQuizPrompt(prompt, difficulty string, count int) string {
	return fmt.Sprintf(`You are a quiz creator AI. Create a quiz based on the user's prompt with exactly %d questions.

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or markdown
2. Use exactly this structure
3. Each question must have exactly 4 choices
4. Difficulty level: %s
5. Questions should be diverse and educational
6. Include a mix of question types when appropriate

Required JSON format:
{
  "title": "Quiz Title Here",
  "description": "Brief description of the quiz topic",
  "questions": [
    {
      "content": "Question text here?",
      "type": "multiple-choice",
      "choices": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "Option A",
      "points": 1,
      "explanation": "Brief explanation of why this is correct"
    }
  ]
}

User prompt: "%s"

Create %d %s difficulty questions. Ensure all questions are relevant, educational, and have clear correct answers.`,
		count, difficulty, prompt, count, difficulty)
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
