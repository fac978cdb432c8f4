package service

import (
	"testing"

	"github.com/skillcap/assessment-api/internal/model"
	"github.com/skillcap/assessment-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	rows := []model.Assessment{
		{Title: "python_basics.pdf", SkillDomain: "python", Status: model.AssessmentStatusPublished, QuestionCount: 10, DurationMinutes: 30, Difficulty: "medium"},
		{Title: "python basics", SkillDomain: "Python", Status: model.AssessmentStatusPublished, QuestionCount: 10, DurationMinutes: 30, Difficulty: "medium"},
		{Title: "docker_intro.pdf", SkillDomain: "devops", Status: model.AssessmentStatusPublished, QuestionCount: 10, DurationMinutes: 30, Difficulty: "hard"},
		{Title: "retired content", SkillDomain: "python", Status: model.AssessmentStatusArchived},
	}
	for i := range rows {
		require.NoError(t, env.assessmentRepo.Create(&rows[i]))
	}
}

func TestListGroupsByNormalizedDomain(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)

	svc := NewAssessmentService(env.assessmentRepo, repository.NewQuestionRepository(env.db))
	list, err := svc.List()
	require.NoError(t, err)

	// The archived assessment is excluded everywhere.
	assert.Len(t, list.Assessments, 3)
	require.Len(t, list.Courses, 2)

	byDomain := make(map[string]int)
	for _, course := range list.Courses {
		byDomain[course.SkillDomain] = course.TestCount
	}
	// Both python titles normalize to "Python Basics", so one unique source.
	assert.Equal(t, 1, byDomain["Python"])
	assert.Equal(t, 1, byDomain["Devops"])

	for _, a := range list.Assessments {
		assert.NotZero(t, a.MarketDemand)
	}
}

func TestListByCourseDeduplicatesTitles(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)

	svc := NewAssessmentService(env.assessmentRepo, repository.NewQuestionRepository(env.db))

	// Case-insensitive domain match.
	list, err := svc.ListByCourse("PYTHON")
	require.NoError(t, err)

	require.Len(t, list.Assessments, 1)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "Python Basics", list.Assessments[0].Title)
	assert.NotEmpty(t, list.Assessments[0].OriginalTitle)
	assert.Equal(t, "Python", list.Assessments[0].SkillDomain)
}

func TestStatsCountsContent(t *testing.T) {
	env := newTestEnv(t)
	env.seedAssessment(t, 30)

	svc := NewAssessmentService(env.assessmentRepo, repository.NewQuestionRepository(env.db))
	stats, err := svc.Stats()
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalAssessments)
	assert.Equal(t, 2, stats.TotalQuestions)
	assert.Equal(t, 2, stats.QuestionsByDifficulty[model.DifficultyEasy])
}
