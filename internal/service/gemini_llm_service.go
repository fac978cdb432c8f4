package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/skillcap/assessment-api/config"
	"github.com/skillcap/assessment-api/internal/apperr"
	"github.com/skillcap/assessment-api/internal/model"
	"google.golang.org/api/option"
	"gorm.io/datatypes"
)

// GeneratedQuestion is the wire shape questions come back in from the model.
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
}

// FeedbackInput carries the finished attempt's numbers into feedback generation.
type FeedbackInput struct {
	Score       float64
	MaxScore    float64
	Percentage  float64
	Passed      bool
	Correct     int
	Total       int
	SkillDomain string
}

type GeminiLLMService interface {
	GenerateQuestions(ctx context.Context, topic string, sourceTitle string, count int) ([]model.Question, error)
	GenerateFeedback(ctx context.Context, in FeedbackInput) (string, error)
	Available() bool
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiLLMService{client: model, cfg: cfg}, nil
}

func (s *geminiLLMService) Available() bool {
	return s.client != nil
}

// GenerateQuestions asks the model for count MCQs on topic and keeps only the
// ones that pass validation. Questions come back unsaved; persistence is the
// caller's job.
func (s *geminiLLMService) GenerateQuestions(ctx context.Context, topic string, sourceTitle string, count int) ([]model.Question, error) {
	if s.client == nil {
		return nil, apperr.UpstreamUnavailable("question generation service is not configured")
	}
	if count < 1 {
		count = 1
	}

	prompt := buildQuestionPrompt(topic, count)
	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Gemini API error during question generation")
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, err, "question generation failed")
	}

	raw := collectText(resp)
	if raw == "" {
		return nil, apperr.UpstreamUnavailable("question generation returned no content")
	}

	generated, err := parseGeneratedQuestions(raw)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to parse generated questions")
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, err, "question generation returned malformed content")
	}

	questions := make([]model.Question, 0, len(generated))
	for _, g := range generated {
		if reason := validateGeneratedQuestion(g); reason != "" {
			log.Warn().Str("reason", reason).Str("question", truncate(g.Question, 60)).Msg("Invalid generated question skipped")
			continue
		}
		questions = append(questions, model.Question{
			Prompt:        strings.TrimSpace(g.Question),
			Options:       datatypes.NewJSONSlice(g.Options),
			CorrectAnswer: resolveCorrectLabel(g.CorrectAnswer, g.Options),
			Explanation:   strings.TrimSpace(g.Explanation),
			Difficulty:    strings.ToLower(strings.TrimSpace(g.Difficulty)),
			Topic:         topic,
			SourceTitle:   sourceTitle,
		})
	}

	if len(questions) == 0 {
		return nil, apperr.UpstreamUnavailable("question generation produced no valid questions")
	}
	return questions, nil
}

// GenerateFeedback produces a short motivational message for a finished
// attempt. Callers should treat errors as non-fatal and fall back to
// FallbackFeedback.
func (s *geminiLLMService) GenerateFeedback(ctx context.Context, in FeedbackInput) (string, error) {
	if s.client == nil {
		return "", apperr.UpstreamUnavailable("feedback generation service is not configured")
	}

	skillContext := ""
	if in.SkillDomain != "" {
		skillContext = fmt.Sprintf(" in %s", in.SkillDomain)
	}
	status := "Needs Improvement"
	if in.Passed {
		status = "Passed"
	}
	accuracy := 0.0
	if in.Total > 0 {
		accuracy = float64(in.Correct) / float64(in.Total) * 100
	}

	prompt := fmt.Sprintf(`You are a supportive and encouraging educational assistant.
Generate a short, personalized, and motivational feedback message for a student who just completed an assessment%s.

Assessment Results:
- Score: %.1f out of %.1f
- Percentage: %.1f%%
- Status: %s
- Correct Answers: %d out of %d questions
- Accuracy: %.1f%%

Requirements:
1. Start with a motivational message (e.g., "Great job!", "You're improving fast!", "Excellent work!")
2. Provide positive reinforcement for their performance
3. If accuracy is below 70%%, gently suggest areas to focus on
4. Always end with encouragement to continue learning
5. Keep the tone positive, supportive, and student-friendly - never discouraging
6. Maximum 3-4 sentences

Generate only the feedback message, no additional text:`,
		skillContext, in.Score, in.MaxScore, in.Percentage, status, in.Correct, in.Total, accuracy)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Warn().Err(err).Msg("Gemini API error during feedback generation")
		return "", apperr.Wrap(apperr.KindUpstreamUnavailable, err, "feedback generation failed")
	}

	feedback := strings.TrimSpace(collectText(resp))
	feedback = strings.Trim(feedback, `"'`)
	if feedback == "" {
		return "", apperr.UpstreamUnavailable("feedback generation returned no content")
	}
	return feedback, nil
}

// FallbackFeedback is the rule-based message used when the model is
// unavailable or errors. It always returns something.
func FallbackFeedback(percentage float64, skillDomain string) string {
	skillContext := ""
	if skillDomain != "" {
		skillContext = fmt.Sprintf(" in %s", skillDomain)
	}
	switch {
	case percentage >= 90:
		return fmt.Sprintf("Outstanding work%s! You've demonstrated excellent understanding and mastery. Keep up this fantastic performance and continue challenging yourself with more advanced topics!", skillContext)
	case percentage >= 80:
		return fmt.Sprintf("Great job%s! You're showing strong comprehension and are on the right track. Keep practicing and you'll master this skill completely soon!", skillContext)
	case percentage >= 70:
		return fmt.Sprintf("Good effort%s! You're making solid progress. Focus on reviewing the areas where you had difficulty, and with continued practice, you'll see even better results next time!", skillContext)
	case percentage >= 60:
		return fmt.Sprintf("Nice work%s! You're improving and getting closer to mastery. Review the questions you missed, focus on those topics, and keep practicing. You're on the right path!", skillContext)
	default:
		return fmt.Sprintf("Great effort%s! Every assessment is a learning opportunity. Review the areas where you struggled, focus on understanding the concepts, and keep practicing. You'll get even better results next time!", skillContext)
	}
}

func buildQuestionPrompt(topic string, count int) string {
	return fmt.Sprintf(`You are an expert question generator for educational assessments. Always respond with valid JSON only. Do not include markdown code blocks.

Generate exactly %d multiple-choice questions about %s at mixed difficulty levels.

For each question, provide:
1. A clear, specific question text (minimum 30 characters) that tests understanding, not just recall
2. Exactly four options with full text (not just letters) where only one is correct
3. The correct answer as a letter: "A", "B", "C", or "D"
4. A detailed explanation of why the answer is correct
5. A difficulty of "easy", "medium", or "hard"

Never write questions about file names, video titles, timestamps, or any document metadata.

Format as JSON array with this exact structure:
[
  {
    "question": "Question text here",
    "options": ["Option A text", "Option B text", "Option C text", "Option D text"],
    "correct_answer": "A",
    "explanation": "Brief explanation of the correct answer",
    "difficulty": "medium"
  }
]`, count, topic)
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

// parseGeneratedQuestions accepts either a bare JSON array or one wrapped in a
// markdown code fence, which the model emits despite instructions.
func parseGeneratedQuestions(raw string) ([]GeneratedQuestion, error) {
	content := strings.TrimSpace(raw)
	if idx := strings.Index(content, "```json"); idx != -1 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end != -1 {
			content = content[:end]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if end := strings.Index(content, "```"); end != -1 {
			content = content[:end]
		}
	}
	content = strings.TrimSpace(content)

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		var single GeneratedQuestion
		if err2 := json.Unmarshal([]byte(content), &single); err2 != nil {
			return nil, err
		}
		questions = []GeneratedQuestion{single}
	}
	return questions, nil
}

var bannedQuestionPatterns = []string{
	"pdf_", "video_", ".pdf", ".mp4", ".avi", ".mov",
	"file name", "filename", "file title", "video title",
	"timestamp", "2025-", "2024-", "2023-", "2022-",
	"chunk", "embedding", "metadata",
	"what is the name", "what is the title", "what is the file",
}

var genericQuestionPrefixes = []string{
	"what is python", "what is a variable", "what is a function",
	"what is a loop", "what is a list", "what is a dictionary",
	"what is python used for", "what is the purpose of python",
}

// validateGeneratedQuestion returns an empty string for valid questions, or a
// short reason for the first problem found.
func validateGeneratedQuestion(q GeneratedQuestion) string {
	text := strings.TrimSpace(q.Question)
	if text == "" {
		return "missing question"
	}
	lower := strings.ToLower(text)
	for _, pattern := range bannedQuestionPatterns {
		if strings.Contains(lower, pattern) {
			return "contains filename/metadata reference"
		}
	}
	for _, prefix := range genericQuestionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "generic/trivial question"
		}
	}
	if len(text) < 30 {
		return "question too short"
	}
	if len(q.Options) != 4 {
		return fmt.Sprintf("invalid options (got %d)", len(q.Options))
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return "empty option"
		}
	}
	if resolveCorrectLabel(q.CorrectAnswer, q.Options) == "" {
		return "invalid correct_answer format"
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return "missing explanation"
	}
	switch strings.ToLower(strings.TrimSpace(q.Difficulty)) {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return "invalid difficulty"
	}
	return ""
}

// resolveCorrectLabel maps a correct answer given either as a letter or as
// full option text to its positional label. Empty means unresolvable.
func resolveCorrectLabel(correct string, options []string) string {
	answer := strings.TrimSpace(correct)
	if answer == "" {
		return ""
	}
	upper := strings.ToUpper(answer)
	for _, label := range OptionLabels {
		if upper == label {
			return label
		}
	}
	for i, option := range options {
		if i >= len(OptionLabels) {
			break
		}
		if strings.TrimSpace(option) == answer {
			return OptionLabels[i]
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
