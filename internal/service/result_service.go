package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/model"
	"github.com/skillcap/assessment-api/internal/repository"
	"gorm.io/gorm"
)

const feedbackTimeout = 20 * time.Second

// ResultService freezes scored attempts into immutable Result rows and turns
// them back into client payloads.
type ResultService interface {
	// Finalize writes responses, the result row, and the attempt's terminal
	// transition in one transaction. If a concurrent submit already created
	// the result, the winner's row is returned and created is false.
	Finalize(attempt *model.Attempt, summary ScoreSummary, terminalStatus string, completedAt time.Time, elapsedSeconds int) (result *model.Result, created bool, err error)
	// AttachFeedback fills in the result's feedback text after the fact.
	// Always succeeds in producing something; the model is best-effort.
	AttachFeedback(result *model.Result, skillDomain string)
	BuildResultDTO(attempt *model.Attempt, result *model.Result, warnings []string) (*dto.ResultDTO, error)
	GetByAttemptID(attemptID uint) (*dto.ResultDTO, error)
}

type resultService struct {
	db           *gorm.DB
	attemptRepo  repository.AttemptRepository
	responseRepo repository.ResponseRepository
	resultRepo   repository.ResultRepository
	questionRepo repository.QuestionRepository
	llm          GeminiLLMService
}

func NewResultService(
	db *gorm.DB,
	attemptRepo repository.AttemptRepository,
	responseRepo repository.ResponseRepository,
	resultRepo repository.ResultRepository,
	questionRepo repository.QuestionRepository,
	llm GeminiLLMService,
) ResultService {
	return &resultService{
		db:           db,
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
		resultRepo:   resultRepo,
		questionRepo: questionRepo,
		llm:          llm,
	}
}

func (s *resultService) Finalize(attempt *model.Attempt, summary ScoreSummary, terminalStatus string, completedAt time.Time, elapsedSeconds int) (*model.Result, bool, error) {
	result := &model.Result{
		AttemptID:       attempt.ID,
		AssessmentID:    attempt.AssessmentID,
		UserID:          attempt.UserID,
		TotalScore:      summary.TotalScore,
		MaxScore:        summary.MaxScore,
		PercentageScore: summary.Percentage,
		PassingScore:    attempt.Assessment.PassingScore,
		Passed:          summary.Percentage >= attempt.Assessment.PassingScore,
		GeneratedAt:     completedAt,
	}

	responses := make([]model.Response, 0, len(summary.Breakdown))
	for _, scored := range summary.Breakdown {
		response := model.Response{
			AttemptID:      attempt.ID,
			QuestionID:     scored.Question.ID,
			QuestionPrompt: scored.Question.Prompt,
			CorrectAnswer:  scored.Question.CorrectAnswer,
			SelectedOption: scored.Selected,
			Score:          scored.Awarded,
			MaxScore:       summary.MaxScore / float64(len(summary.Breakdown)),
			Status:         model.ResponseStatusScored,
		}
		if !scored.Answered {
			response.Status = model.ResponseStatusSkipped
		}
		responses = append(responses, response)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(responses) > 0 {
			if err := tx.Create(&responses).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"status":             terminalStatus,
			"completed_at":       completedAt,
			"time_spent_seconds": elapsedSeconds,
			"total_score":        summary.TotalScore,
			"max_score":          summary.MaxScore,
			"percentage_score":   summary.Percentage,
		}
		return tx.Model(&model.Attempt{}).Where("id = ?", attempt.ID).Updates(updates).Error
	})
	if err != nil {
		// A concurrent submit won the unique index race on attempt_id. The
		// attempt is already terminal; hand back the winner's row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, fetchErr := s.resultRepo.FindByAttemptID(attempt.ID)
			if fetchErr != nil {
				return nil, false, fetchErr
			}
			log.Info().Uint("attemptID", attempt.ID).Msg("Concurrent submission detected; returning existing result")
			return existing, false, nil
		}
		return nil, false, err
	}

	attempt.Status = terminalStatus
	attempt.CompletedAt = &completedAt
	attempt.TimeSpentSeconds = elapsedSeconds
	attempt.TotalScore = summary.TotalScore
	attempt.MaxScore = summary.MaxScore
	attempt.PercentageScore = summary.Percentage
	return result, true, nil
}

func (s *resultService) AttachFeedback(result *model.Result, skillDomain string) {
	correct, total := 0, 0
	if responses, err := s.responseRepo.FindByAttemptID(result.AttemptID); err == nil {
		total = len(responses)
		for _, r := range responses {
			if r.Score > 0 {
				correct++
			}
		}
	}

	feedback := ""
	if s.llm.Available() {
		ctx, cancel := context.WithTimeout(context.Background(), feedbackTimeout)
		defer cancel()
		generated, err := s.llm.GenerateFeedback(ctx, FeedbackInput{
			Score:       result.TotalScore,
			MaxScore:    result.MaxScore,
			Percentage:  result.PercentageScore,
			Passed:      result.Passed,
			Correct:     correct,
			Total:       total,
			SkillDomain: skillDomain,
		})
		if err != nil {
			log.Warn().Err(err).Uint("resultID", result.ID).Msg("Feedback generation failed; using fallback")
		} else {
			feedback = generated
		}
	}
	if feedback == "" {
		feedback = FallbackFeedback(result.PercentageScore, skillDomain)
	}

	if err := s.resultRepo.UpdateFeedback(result.ID, feedback); err != nil {
		log.Error().Err(err).Uint("resultID", result.ID).Msg("Failed to store feedback")
		return
	}
	result.OverallFeedback = feedback
}

func (s *resultService) BuildResultDTO(attempt *model.Attempt, result *model.Result, warnings []string) (*dto.ResultDTO, error) {
	responses, err := s.responseRepo.FindByAttemptID(attempt.ID)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]uint, 0, len(responses))
	for _, r := range responses {
		questionIDs = append(questionIDs, r.QuestionID)
	}
	explanations := make(map[uint]string, len(questionIDs))
	if questions, err := s.questionRepo.FindByIDs(questionIDs); err == nil {
		for _, q := range questions {
			explanations[q.ID] = q.Explanation
		}
	}

	correct := 0
	breakdown := make([]dto.QuestionResultDTO, 0, len(responses))
	for _, r := range responses {
		isCorrect := r.Score > 0
		if isCorrect {
			correct++
		}
		breakdown = append(breakdown, dto.QuestionResultDTO{
			QuestionID:     r.QuestionID,
			QuestionText:   r.QuestionPrompt,
			SelectedOption: r.SelectedOption,
			CorrectAnswer:  r.CorrectAnswer,
			IsCorrect:      isCorrect,
			Explanation:    explanations[r.QuestionID],
		})
	}

	return &dto.ResultDTO{
		AttemptID:       attempt.ID,
		AssessmentID:    attempt.AssessmentID,
		AssessmentTitle: NormalizeTitle(attempt.Assessment.Title),
		SkillDomain:     attempt.Assessment.SkillDomain,
		AttemptStatus:   attempt.Status,
		Score:           result.TotalScore,
		MaxScore:        result.MaxScore,
		PercentageScore: math.Round(result.PercentageScore*10) / 10,
		Passed:          result.Passed,
		CorrectCount:    correct,
		TotalQuestions:  len(responses),
		StartedAt:       attempt.StartedAt,
		CompletedAt:     attempt.CompletedAt,
		DurationMinutes: attempt.DurationMinutes,
		Feedback:        result.OverallFeedback,
		Warnings:        warnings,
		Results:         breakdown,
	}, nil
}

func (s *resultService) GetByAttemptID(attemptID uint) (*dto.ResultDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt %d not found", attemptID)
		}
		return nil, err
	}
	if !attempt.Terminal() {
		return nil, apperr.InvalidState("attempt %d is still in progress; no result exists yet", attemptID)
	}

	result, err := s.resultRepo.FindByAttemptID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Abandoned attempts never produce a result.
			return nil, apperr.NotFound("attempt %d has no result", attemptID)
		}
		return nil, err
	}
	return s.BuildResultDTO(attempt, result, nil)
}
