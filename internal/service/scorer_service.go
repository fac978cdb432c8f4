package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/model"
)

// OptionLabels are the positional labels of MCQ options; they are derived
// from option order and never stored.
var OptionLabels = []string{"A", "B", "C", "D"}

// ScoredQuestion is the per-question outcome of scoring one attempt.
type ScoredQuestion struct {
	Question model.Question
	Selected string // normalized label, empty when unanswered
	Awarded  float64
	Correct  bool
	Answered bool
}

// ScoreSummary is the scorer's complete output. Percentage carries full
// precision; use DisplayPercentage for the one-decimal client form.
type ScoreSummary struct {
	TotalScore float64
	MaxScore   float64
	Percentage float64
	Breakdown  []ScoredQuestion
	Warnings   []string
}

func (s ScoreSummary) DisplayPercentage() float64 {
	return math.Round(s.Percentage*10) / 10
}

func (s ScoreSummary) CorrectCount() int {
	count := 0
	for _, q := range s.Breakdown {
		if q.Correct {
			count++
		}
	}
	return count
}

// ScorerService maps a question set plus submitted answers to a score. It is
// pure: no repository access, no clock.
type ScorerService interface {
	Score(questions []model.Question, answers []dto.AnswerSubmission, weight float64) ScoreSummary
}

type scorerService struct{}

func NewScorerService() ScorerService {
	return &scorerService{}
}

// Score awards the full per-question weight when the normalized submitted
// label equals the question's correct label, zero otherwise. Questions with
// no submitted answer score zero and are reported as unanswered. Answers
// referencing question IDs outside the set are ignored with a warning.
func (s *scorerService) Score(questions []model.Question, answers []dto.AnswerSubmission, weight float64) ScoreSummary {
	if weight <= 0 {
		weight = 1
	}

	byQuestion := make(map[uint]dto.AnswerSubmission, len(answers))
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var warnings []string
	for _, answer := range answers {
		if !known[answer.QuestionID] {
			warnings = append(warnings, fmt.Sprintf("answer for unknown question ID %d ignored", answer.QuestionID))
			continue
		}
		byQuestion[answer.QuestionID] = answer
	}

	summary := ScoreSummary{
		MaxScore:  weight * float64(len(questions)),
		Breakdown: make([]ScoredQuestion, 0, len(questions)),
		Warnings:  warnings,
	}

	for _, question := range questions {
		scored := ScoredQuestion{Question: question}
		if answer, ok := byQuestion[question.ID]; ok {
			scored.Answered = true
			scored.Selected = NormalizeAnswerLabel(answer.Answer, question.Options)
			correctLabel := strings.ToUpper(strings.TrimSpace(question.CorrectAnswer))
			if scored.Selected != "" && scored.Selected == correctLabel {
				scored.Correct = true
				scored.Awarded = weight
				summary.TotalScore += weight
			}
		}
		summary.Breakdown = append(summary.Breakdown, scored)
	}

	if summary.MaxScore > 0 {
		summary.Percentage = summary.TotalScore / summary.MaxScore * 100
	}
	return summary
}

// NormalizeAnswerLabel maps a raw submitted answer to an uppercase
// single-letter label. Full option text is accepted and resolved by position;
// anything unrecognized comes back uppercased as-is (and will simply not
// match the correct label).
func NormalizeAnswerLabel(raw string, options []string) string {
	answer := strings.ToUpper(strings.TrimSpace(raw))
	if answer == "" {
		return ""
	}
	if len(answer) == 1 && answer >= "A" && answer <= "Z" {
		return answer
	}
	for i, option := range options {
		if i >= len(OptionLabels) {
			break
		}
		if strings.EqualFold(strings.TrimSpace(option), strings.TrimSpace(raw)) {
			return OptionLabels[i]
		}
	}
	return answer
}
