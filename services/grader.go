package services

import (
	"log"
	"math"
	"strings"

	"quizdeck/models"
)

// GradeResult is the outcome of grading one question. Every question in the
// quiz gets an entry, answered or not, so clients can always render a full
// review.
type GradeResult struct {
	Earned        int                `json:"earned"`
	Correct       bool               `json:"correct"`
	UserAnswer    models.AnswerValue `json:"userAnswer"`
	CorrectAnswer models.AnswerValue `json:"correctAnswer"`
}

// wrongSelectionPenalty is the fraction of full credit lost per spurious
// multi-choice selection. It keeps "select everything" from paying off
// without wiping out a single slip.
const wrongSelectionPenalty = 0.1

// GradeQuestion scores one submitted answer against a question. It never
// fails: unknown types and malformed canonical answers are logged and score
// zero, as do missing or empty answers.
func GradeQuestion(q *models.Question, submitted models.AnswerValue) GradeResult {
	result := GradeResult{
		UserAnswer:    submitted,
		CorrectAnswer: q.CanonicalAnswer(),
	}

	if submitted.Empty() {
		return result
	}

	switch q.Type {
	case models.QuestionTypeSingleChoice, models.QuestionTypeMultipleChoice:
		if strings.EqualFold(result.CorrectAnswer.Scalar(), submitted.Scalar()) {
			result.Correct = true
			result.Earned = q.Points
		}

	case models.QuestionTypeMultiChoice:
		result.Earned, result.Correct = gradeMultiChoice(result.CorrectAnswer.List(), submitted.List(), q.Points)

	case models.QuestionTypeText:
		canonical := strings.TrimSpace(result.CorrectAnswer.Scalar())
		given := strings.TrimSpace(submitted.Scalar())
		if strings.EqualFold(canonical, given) {
			result.Correct = true
			result.Earned = q.Points
		}

	default:
		log.Printf("Unknown question type %q on question %s; scoring zero", q.Type, q.ID)
	}

	return result
}

// gradeMultiChoice applies partial credit: the matched fraction of the
// canonical set, minus a penalty per wrong selection, floored at zero and
// rounded once at the end. The correctness flag still demands an exact set
// match. Both sides are sets, so repeating a selection counts it once.
func gradeMultiChoice(canonical, submitted []string, points int) (int, bool) {
	canonical = dedupeFold(canonical)
	if len(canonical) == 0 {
		// Misconfigured question; contributes nothing regardless of input.
		return 0, false
	}
	submitted = dedupeFold(submitted)

	matched, wrong := 0, 0
	for _, given := range submitted {
		if containsFold(canonical, given) {
			matched++
		} else {
			wrong++
		}
	}

	fraction := float64(matched) / float64(len(canonical))
	fraction -= float64(wrong) * wrongSelectionPenalty
	if fraction < 0 {
		fraction = 0
	}

	earned := int(math.Round(fraction * float64(points)))
	correct := matched == len(canonical) && wrong == 0
	return earned, correct
}

func dedupeFold(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !containsFold(out, item) {
			out = append(out, item)
		}
	}
	return out
}

func containsFold(set []string, value string) bool {
	for _, item := range set {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// GradeSubmission grades a full answer map against a quiz's questions and
// returns the total score plus per-question detail keyed by question id.
// Grading is per-question pure and order-independent.
func GradeSubmission(questions []models.Question, answers map[string]models.AnswerValue) (int, map[string]GradeResult) {
	total := 0
	detail := make(map[string]GradeResult, len(questions))
	for i := range questions {
		q := &questions[i]
		result := GradeQuestion(q, answers[q.ID])
		detail[q.ID] = result
		total += result.Earned
	}
	return total, detail
}
