package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/config"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/model"
	"github.com/skillcap/assessment-api/internal/repository"
	"gorm.io/gorm"
)

const defaultQuestionsPerAttempt = 10

// AttemptService owns the attempt lifecycle: open, submit, cancel, and stale
// cleanup. An attempt leaves in_progress exactly once; every terminal status
// is absorbing.
type AttemptService interface {
	StartByAssessment(assessmentID uint, userID *uint) (*dto.AttemptStartDTO, error)
	StartBySkill(req dto.StartAssessmentRequest) (*dto.AttemptStartDTO, error)
	Submit(req dto.SubmitAssessmentRequest) (*dto.ResultDTO, error)
	Cancel(attemptID uint) (*model.Attempt, error)
	// AbandonStale marks in_progress attempts whose time budget plus grace
	// period has passed as abandoned. Returns how many were reaped.
	AbandonStale() (int, error)
}

type attemptService struct {
	cfg            *config.Config
	attemptRepo    repository.AttemptRepository
	assessmentRepo repository.AssessmentRepository
	questionRepo   repository.QuestionRepository
	courseRepo     repository.CourseRepository
	scorer         ScorerService
	results        ResultService
	llm            GeminiLLMService
	now            func() time.Time
}

func NewAttemptService(
	cfg *config.Config,
	attemptRepo repository.AttemptRepository,
	assessmentRepo repository.AssessmentRepository,
	questionRepo repository.QuestionRepository,
	courseRepo repository.CourseRepository,
	scorer ScorerService,
	results ResultService,
	llm GeminiLLMService,
) AttemptService {
	return &attemptService{
		cfg:            cfg,
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		questionRepo:   questionRepo,
		courseRepo:     courseRepo,
		scorer:         scorer,
		results:        results,
		llm:            llm,
		now:            time.Now,
	}
}

func (s *attemptService) StartByAssessment(assessmentID uint, userID *uint) (*dto.AttemptStartDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDWithQuestions(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assessment %d not found", assessmentID)
		}
		return nil, err
	}
	if assessment.Status != model.AssessmentStatusPublished {
		return nil, apperr.InvalidState("assessment %d is not published", assessmentID)
	}
	if len(assessment.Questions) == 0 {
		// Published but empty; fill the set before the attempt opens. A
		// generation failure blocks the start.
		count := assessment.QuestionCount
		if count <= 0 {
			count = defaultQuestionsPerAttempt
		}
		questions, err := s.llm.GenerateQuestions(context.Background(), assessment.SkillDomain, "", count)
		if err != nil {
			return nil, err
		}
		for i := range questions {
			questions[i].AssessmentID = &assessment.ID
		}
		if err := s.questionRepo.CreateBatch(questions); err != nil {
			return nil, err
		}
		assessment.Questions = questions
	}
	return s.openAttempt(assessment, userID)
}

// StartBySkill resolves a skill name to a published assessment, creating and
// populating one on the fly when none exists, then opens an attempt. On-the-fly
// creation requires the question generation model.
func (s *attemptService) StartBySkill(req dto.StartAssessmentRequest) (*dto.AttemptStartDTO, error) {
	domain := NormalizeDomain(req.SkillName)

	existing, err := s.assessmentRepo.FindPublishedBySkillDomain(domain)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return s.StartByAssessment(existing[0].ID, req.UserID)
	}

	count := req.NumQuestions
	if count <= 0 {
		count = defaultQuestionsPerAttempt
	}

	questions, err := s.llm.GenerateQuestions(context.Background(), domain, "", count)
	if err != nil {
		return nil, err
	}

	assessment := &model.Assessment{
		Title:         fmt.Sprintf("%s Assessment", domain),
		Description:   fmt.Sprintf("Auto-generated assessment for %s", domain),
		SkillDomain:   domain,
		QuestionCount: len(questions),
		Status:        model.AssessmentStatusPublished,
		Questions:     questions,
	}
	if course, err := s.courseRepo.FindOrCreate(DetectCourseName(domain), ""); err == nil {
		assessment.CourseID = &course.ID
	}
	if err := s.assessmentRepo.Create(assessment); err != nil {
		return nil, err
	}
	log.Info().Uint("assessmentID", assessment.ID).Str("skillDomain", domain).Int("questions", len(questions)).Msg("Created assessment on the fly")

	return s.openAttempt(assessment, req.UserID)
}

func (s *attemptService) openAttempt(assessment *model.Assessment, userID *uint) (*dto.AttemptStartDTO, error) {
	now := s.now()
	attempt := &model.Attempt{
		AssessmentID:    assessment.ID,
		UserID:          userID,
		Status:          model.AttemptStatusInProgress,
		StartedAt:       now,
		DurationMinutes: assessment.DurationMinutes,
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	public := make([]dto.QuestionPublicDTO, 0, len(assessment.Questions))
	for _, q := range assessment.Questions {
		public = append(public, dto.QuestionPublicDTO{
			ID:         q.ID,
			Question:   q.Prompt,
			Options:    q.Options,
			Difficulty: q.Difficulty,
		})
	}

	return &dto.AttemptStartDTO{
		AttemptID:        attempt.ID,
		AssessmentID:     assessment.ID,
		Title:            NormalizeTitle(assessment.Title),
		Questions:        public,
		DurationMinutes:  attempt.DurationMinutes,
		TimeRemainingSec: attempt.TimeRemaining(now),
		StartedAt:        attempt.StartedAt,
	}, nil
}

// Submit finalizes an in_progress attempt. The elapsed time is recomputed
// server side from StartedAt; a submission past the time budget still gets
// scored but lands as timed_out. Re-submitting a completed or timed_out
// attempt returns the already-frozen result unchanged.
func (s *attemptService) Submit(req dto.SubmitAssessmentRequest) (*dto.ResultDTO, error) {
	attempt, err := s.attemptRepo.FindByID(req.AttemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt %d not found", req.AttemptID)
		}
		return nil, err
	}

	switch attempt.Status {
	case model.AttemptStatusCompleted, model.AttemptStatusTimedOut:
		return s.results.GetByAttemptID(attempt.ID)
	case model.AttemptStatusAbandoned:
		return nil, apperr.InvalidState("attempt %d was abandoned and can no longer be submitted", attempt.ID)
	}

	questions, err := s.questionRepo.FindByAssessmentID(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apperr.InvalidState("attempt %d has no questions to score", attempt.ID)
	}

	now := s.now()
	elapsed := int(now.Sub(attempt.StartedAt).Seconds())
	terminalStatus := model.AttemptStatusCompleted
	if now.After(attempt.Deadline()) {
		terminalStatus = model.AttemptStatusTimedOut
	}

	summary := s.scorer.Score(questions, req.Answers, attempt.Assessment.QuestionWeight)

	result, created, err := s.results.Finalize(attempt, summary, terminalStatus, now, elapsed)
	if err != nil {
		return nil, err
	}
	if created {
		s.results.AttachFeedback(result, attempt.Assessment.SkillDomain)
		log.Info().
			Uint("attemptID", attempt.ID).
			Str("status", terminalStatus).
			Float64("score", summary.TotalScore).
			Float64("percentage", summary.DisplayPercentage()).
			Msg("Attempt finalized")
		return s.results.BuildResultDTO(attempt, result, summary.Warnings)
	}

	// Lost the finalize race; re-read the attempt so the DTO reflects the
	// winner's terminal status.
	attempt, err = s.attemptRepo.FindByID(attempt.ID)
	if err != nil {
		return nil, err
	}
	return s.results.BuildResultDTO(attempt, result, nil)
}

// Cancel abandons an in_progress attempt. Cancelling an already-abandoned
// attempt is a no-op; a completed or timed_out attempt cannot be cancelled.
func (s *attemptService) Cancel(attemptID uint) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt %d not found", attemptID)
		}
		return nil, err
	}

	switch attempt.Status {
	case model.AttemptStatusAbandoned:
		return attempt, nil
	case model.AttemptStatusCompleted, model.AttemptStatusTimedOut:
		return nil, apperr.InvalidState("attempt %d is already %s", attemptID, attempt.Status)
	}

	now := s.now()
	attempt.Status = model.AttemptStatusAbandoned
	attempt.CompletedAt = &now
	attempt.TimeSpentSeconds = int(now.Sub(attempt.StartedAt).Seconds())
	if err := s.attemptRepo.Update(attempt); err != nil {
		return nil, err
	}
	log.Info().Uint("attemptID", attemptID).Msg("Attempt cancelled")
	return attempt, nil
}

func (s *attemptService) AbandonStale() (int, error) {
	open, err := s.attemptRepo.FindInProgress()
	if err != nil {
		return 0, err
	}

	now := s.now()
	grace := time.Duration(s.cfg.Attempt.GraceMinutes) * time.Minute
	reaped := 0
	for i := range open {
		attempt := &open[i]
		if now.Before(attempt.Deadline().Add(grace)) {
			continue
		}
		cutoff := attempt.Deadline().Add(grace)
		attempt.Status = model.AttemptStatusAbandoned
		attempt.CompletedAt = &cutoff
		attempt.TimeSpentSeconds = int(cutoff.Sub(attempt.StartedAt).Seconds())
		if err := s.attemptRepo.Update(attempt); err != nil {
			log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to abandon stale attempt")
			continue
		}
		reaped++
	}
	if reaped > 0 {
		log.Info().Int("count", reaped).Msg("Abandoned stale attempts")
	}
	return reaped, nil
}
