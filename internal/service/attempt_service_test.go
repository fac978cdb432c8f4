package service

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/skillcap/assessment-api/config"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/model"
	"github.com/skillcap/assessment-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db             *gorm.DB
	assessmentRepo repository.AssessmentRepository
	attemptRepo    repository.AttemptRepository
	attempts       *attemptService
	results        ResultService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Course{},
		&model.Assessment{},
		&model.Question{},
		&model.Attempt{},
		&model.Response{},
		&model.Result{},
	))

	cfg := &config.Config{Attempt: config.Attempt{GraceMinutes: 15}}

	assessmentRepo := repository.NewAssessmentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	resultRepo := repository.NewResultRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	llm := &geminiLLMService{cfg: cfg}
	results := NewResultService(db, attemptRepo, responseRepo, resultRepo, questionRepo, llm)

	attempts := &attemptService{
		cfg:            cfg,
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		questionRepo:   questionRepo,
		courseRepo:     courseRepo,
		scorer:         NewScorerService(),
		results:        results,
		llm:            llm,
		now:            time.Now,
	}

	return &testEnv{
		db:             db,
		assessmentRepo: assessmentRepo,
		attemptRepo:    attemptRepo,
		attempts:       attempts,
		results:        results,
	}
}

func (e *testEnv) seedAssessment(t *testing.T, durationMinutes int) *model.Assessment {
	t.Helper()

	assessment := &model.Assessment{
		Title:           "python_basics.pdf",
		SkillDomain:     "Python",
		Difficulty:      model.DifficultyMedium,
		QuestionCount:   2,
		DurationMinutes: durationMinutes,
		PassingScore:    60,
		QuestionWeight:  1,
		Status:          model.AssessmentStatusPublished,
		Questions: []model.Question{
			{
				Prompt:        "What does the len function return when called on a list?",
				Options:       datatypes.NewJSONSlice([]string{"The number of elements", "The last element", "The memory size", "The first element"}),
				CorrectAnswer: "A",
				Explanation:   "len returns the element count.",
				Difficulty:    model.DifficultyEasy,
			},
			{
				Prompt:        "Which keyword defines an anonymous function in Python code?",
				Options:       datatypes.NewJSONSlice([]string{"def", "lambda", "func", "anon"}),
				CorrectAnswer: "B",
				Explanation:   "lambda defines anonymous functions.",
				Difficulty:    model.DifficultyEasy,
			},
		},
	}
	require.NoError(t, e.assessmentRepo.Create(assessment))

	loaded, err := e.assessmentRepo.FindByIDWithQuestions(assessment.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 2)
	return loaded
}

func TestSubmitScoresAndFinalizes(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 30)

	start, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)
	require.Len(t, start.Questions, 2)
	assert.Equal(t, 30, start.DurationMinutes)

	result, err := env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: start.Questions[0].ID, Answer: "A"},
			{QuestionID: start.Questions[1].ID, Answer: "C"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptStatusCompleted, result.AttemptStatus)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 2.0, result.MaxScore)
	assert.Equal(t, 50.0, result.PercentageScore)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.NotNil(t, result.CompletedAt)
	assert.NotEmpty(t, result.Feedback)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].IsCorrect)
	assert.False(t, result.Results[1].IsCorrect)

	attempt, err := env.attemptRepo.FindByID(start.AttemptID)
	require.NoError(t, err)
	assert.True(t, attempt.Terminal())
	assert.NotNil(t, attempt.CompletedAt)
}

func TestSubmitIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 30)

	start, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	first, err := env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: start.Questions[0].ID, Answer: "A"},
			{QuestionID: start.Questions[1].ID, Answer: "B"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.PercentageScore)
	assert.True(t, first.Passed)

	// A second submission with different answers must not rescore anything.
	second, err := env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: start.Questions[0].ID, Answer: "D"},
			{QuestionID: start.Questions[1].ID, Answer: "D"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.PercentageScore, second.PercentageScore)
	assert.Equal(t, first.AttemptStatus, second.AttemptStatus)

	var resultCount int64
	require.NoError(t, env.db.Model(&model.Result{}).Where("attempt_id = ?", start.AttemptID).Count(&resultCount).Error)
	assert.Equal(t, int64(1), resultCount)
}

func TestLateSubmissionIsScoredAsTimedOut(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 1)

	t0 := time.Now()
	env.attempts.now = func() time.Time { return t0 }

	start, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	env.attempts.now = func() time.Time { return t0.Add(90 * time.Second) }

	result, err := env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: start.Questions[0].ID, Answer: "A"},
			{QuestionID: start.Questions[1].ID, Answer: "B"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptStatusTimedOut, result.AttemptStatus)
	assert.Equal(t, 100.0, result.PercentageScore)
	assert.True(t, result.Passed)
}

func TestResultFetchMatchesSubmitResponse(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 30)

	start, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	submitted, err := env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: start.Questions[0].ID, Answer: "A"},
		},
	})
	require.NoError(t, err)

	fetched, err := env.results.GetByAttemptID(start.AttemptID)
	require.NoError(t, err)

	assert.Equal(t, submitted.Score, fetched.Score)
	assert.Equal(t, submitted.MaxScore, fetched.MaxScore)
	assert.Equal(t, submitted.PercentageScore, fetched.PercentageScore)
	assert.Equal(t, submitted.Passed, fetched.Passed)
	assert.Equal(t, submitted.CorrectCount, fetched.CorrectCount)
	assert.Equal(t, submitted.AttemptStatus, fetched.AttemptStatus)
}

func TestSubmitWarnsOnUnknownQuestionIDs(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 30)

	start, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	result, err := env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers: []dto.AnswerSubmission{
			{QuestionID: start.Questions[0].ID, Answer: "A"},
			{QuestionID: 424242, Answer: "B"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Score)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "424242")
}

func TestCancelLifecycle(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 30)

	start, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	cancelled, err := env.attempts.Cancel(start.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusAbandoned, cancelled.Status)
	assert.NotNil(t, cancelled.CompletedAt)

	// Cancelling again is a no-op.
	_, err = env.attempts.Cancel(start.AttemptID)
	require.NoError(t, err)

	// Abandoned attempts can no longer be submitted.
	_, err = env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers:   []dto.AnswerSubmission{{QuestionID: start.Questions[0].ID, Answer: "A"}},
	})
	assert.True(t, apperr.IsInvalidState(err))

	// And they never carry a result.
	_, err = env.results.GetByAttemptID(start.AttemptID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCancelFinalizedAttemptFails(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 30)

	start, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	_, err = env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: start.AttemptID,
		Answers:   []dto.AnswerSubmission{{QuestionID: start.Questions[0].ID, Answer: "A"}},
	})
	require.NoError(t, err)

	_, err = env.attempts.Cancel(start.AttemptID)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestAbandonStaleReapsPastGrace(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 1)

	t0 := time.Now()
	env.attempts.now = func() time.Time { return t0 }

	stale, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	// A second attempt opened just inside the grace window must survive.
	env.attempts.now = func() time.Time { return t0.Add(10 * time.Minute) }
	fresh, err := env.attempts.StartByAssessment(assessment.ID, nil)
	require.NoError(t, err)

	// 1 minute budget + 15 minutes grace, measured from each attempt's start.
	env.attempts.now = func() time.Time { return t0.Add(17 * time.Minute) }
	reaped, err := env.attempts.AbandonStale()
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	staleAttempt, err := env.attemptRepo.FindByID(stale.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusAbandoned, staleAttempt.Status)

	freshAttempt, err := env.attemptRepo.FindByID(fresh.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusInProgress, freshAttempt.Status)
}

func TestStartRequiresPublishedAssessment(t *testing.T) {
	env := newTestEnv(t)

	draft := &model.Assessment{
		Title:       "draft only",
		SkillDomain: "Python",
		Status:      model.AssessmentStatusDraft,
	}
	require.NoError(t, env.assessmentRepo.Create(draft))

	_, err := env.attempts.StartByAssessment(draft.ID, nil)
	assert.True(t, apperr.IsInvalidState(err))

	_, err = env.attempts.StartByAssessment(999999, nil)
	assert.True(t, apperr.IsNotFound(err))
}

func TestStartOnEmptyAssessmentNeedsGeneration(t *testing.T) {
	env := newTestEnv(t)

	empty := &model.Assessment{
		Title:       "kubernetes_networking.pdf",
		SkillDomain: "DevOps",
		Status:      model.AssessmentStatusPublished,
	}
	require.NoError(t, env.assessmentRepo.Create(empty))

	// No questions and no generation backend configured.
	_, err := env.attempts.StartByAssessment(empty.ID, nil)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestSubmitUnknownAttemptNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.attempts.Submit(dto.SubmitAssessmentRequest{
		AttemptID: 12345,
		Answers:   []dto.AnswerSubmission{{QuestionID: 1, Answer: "A"}},
	})
	assert.True(t, apperr.IsNotFound(err))
}
