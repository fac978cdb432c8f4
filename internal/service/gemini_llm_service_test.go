package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGenerated() GeneratedQuestion {
	return GeneratedQuestion{
		Question:      "Which Docker command creates and starts a container from an image in one step?",
		Options:       []string{"docker run", "docker build", "docker pull", "docker commit"},
		CorrectAnswer: "A",
		Explanation:   "docker run creates a container from the image and starts it.",
		Difficulty:    "easy",
	}
}

func TestParseGeneratedQuestionsBareArray(t *testing.T) {
	raw := `[{"question":"Which Docker command creates and starts a container from an image in one step?","options":["a","b","c","d"],"correct_answer":"A","explanation":"x","difficulty":"easy"}]`

	questions, err := parseGeneratedQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "A", questions[0].CorrectAnswer)
}

func TestParseGeneratedQuestionsStripsCodeFence(t *testing.T) {
	raw := "Here you go:\n```json\n[{\"question\":\"q\",\"options\":[],\"correct_answer\":\"B\",\"explanation\":\"\",\"difficulty\":\"\"}]\n```"

	questions, err := parseGeneratedQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
}

func TestParseGeneratedQuestionsRejectsGarbage(t *testing.T) {
	_, err := parseGeneratedQuestions("not json at all")
	assert.Error(t, err)
}

func TestValidateGeneratedQuestion(t *testing.T) {
	assert.Empty(t, validateGeneratedQuestion(validGenerated()))

	q := validGenerated()
	q.Question = "What is in chapter_2.pdf?" + strings.Repeat(" filler", 5)
	assert.Equal(t, "contains filename/metadata reference", validateGeneratedQuestion(q))

	q = validGenerated()
	q.Question = "What is Python used for in modern software development projects?"
	assert.Equal(t, "generic/trivial question", validateGeneratedQuestion(q))

	q = validGenerated()
	q.Question = "Too short?"
	assert.Equal(t, "question too short", validateGeneratedQuestion(q))

	q = validGenerated()
	q.Options = q.Options[:3]
	assert.Contains(t, validateGeneratedQuestion(q), "invalid options")

	q = validGenerated()
	q.Options[2] = "  "
	assert.Equal(t, "empty option", validateGeneratedQuestion(q))

	q = validGenerated()
	q.CorrectAnswer = "E"
	assert.Equal(t, "invalid correct_answer format", validateGeneratedQuestion(q))

	q = validGenerated()
	q.Explanation = ""
	assert.Equal(t, "missing explanation", validateGeneratedQuestion(q))

	q = validGenerated()
	q.Difficulty = "impossible"
	assert.Equal(t, "invalid difficulty", validateGeneratedQuestion(q))
}

func TestResolveCorrectLabel(t *testing.T) {
	options := []string{"docker run", "docker build", "docker pull", "docker commit"}

	assert.Equal(t, "A", resolveCorrectLabel("A", options))
	assert.Equal(t, "B", resolveCorrectLabel("b", options))
	// Full option text resolves to its positional label.
	assert.Equal(t, "C", resolveCorrectLabel("docker pull", options))
	assert.Equal(t, "", resolveCorrectLabel("docker exec", options))
	assert.Equal(t, "", resolveCorrectLabel("", options))
}

func TestFallbackFeedbackTiers(t *testing.T) {
	assert.Contains(t, FallbackFeedback(95, "Python"), "Outstanding work in Python")
	assert.Contains(t, FallbackFeedback(85, ""), "Great job!")
	assert.Contains(t, FallbackFeedback(75, ""), "Good effort")
	assert.Contains(t, FallbackFeedback(65, ""), "Nice work")
	assert.Contains(t, FallbackFeedback(40, "DevOps"), "Great effort in DevOps")

	// Boundaries belong to the upper tier.
	assert.Contains(t, FallbackFeedback(90, ""), "Outstanding work")
	assert.Contains(t, FallbackFeedback(60, ""), "Nice work")
}
