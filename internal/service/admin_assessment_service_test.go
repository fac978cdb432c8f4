package service

import (
	"testing"

	"github.com/skillcap/assessment-api/config"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/dto"
	"github.com/skillcap/assessment-api/internal/model"
	"github.com/skillcap/assessment-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminSvc(env *testEnv) AdminAssessmentService {
	return NewAdminAssessmentService(
		env.assessmentRepo,
		repository.NewQuestionRepository(env.db),
		repository.NewCourseRepository(env.db),
		&geminiLLMService{cfg: &config.Config{}},
	)
}

func TestCreateAssessmentWithInlineQuestions(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminSvc(env)

	created, err := svc.CreateAssessment(dto.AssessmentCreateDTO{
		Title:           "docker_intro.pdf",
		SkillDomain:     "devops",
		Difficulty:      "medium",
		DurationMinutes: 20,
		PassingScore:    70,
		QuestionWeight:  1,
		Publish:         true,
		Questions: []dto.QuestionCreateDTO{
			{
				Prompt:        "Which instruction sets the base image in a Dockerfile build?",
				Options:       []string{"FROM", "RUN", "COPY", "CMD"},
				CorrectAnswer: "A",
				Explanation:   "FROM declares the base image.",
				Difficulty:    "easy",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.AssessmentStatusPublished, created.Status)
	assert.Equal(t, "Devops", created.SkillDomain)
	assert.Equal(t, 1, created.QuestionCount)
	require.Len(t, created.Questions, 1)
	assert.Equal(t, "A", created.Questions[0].CorrectAnswer)

	// The title's docker indicator routes the assessment to the DevOps course.
	require.NotNil(t, created.CourseID)
	course, err := repository.NewCourseRepository(env.db).FindOrCreate("DevOps", "")
	require.NoError(t, err)
	assert.Equal(t, course.ID, *created.CourseID)
}

func TestPublishRequiresQuestions(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminSvc(env)

	created, err := svc.CreateAssessment(dto.AssessmentCreateDTO{
		Title:       "empty shell",
		SkillDomain: "python",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AssessmentStatusDraft, created.Status)

	_, err = svc.Publish(created.ID)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestGenerateQuestionsWithoutModelIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminSvc(env)

	created, err := svc.CreateAssessment(dto.AssessmentCreateDTO{
		Title:       "python advanced",
		SkillDomain: "python",
	})
	require.NoError(t, err)

	_, err = svc.GenerateQuestions(created.ID, dto.GenerateQuestionsDTO{Count: 5})
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))

	_, err = svc.GenerateQuestions(999999, dto.GenerateQuestionsDTO{})
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetAssessmentIncludesAnswers(t *testing.T) {
	env := newTestEnv(t)
	assessment := env.seedAssessment(t, 30)
	svc := newAdminSvc(env)

	full, err := svc.GetAssessment(assessment.ID)
	require.NoError(t, err)
	require.Len(t, full.Questions, 2)
	assert.Equal(t, "A", full.Questions[0].CorrectAnswer)
	assert.Len(t, full.Questions[0].Options, 4)
}
