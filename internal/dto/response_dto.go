package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// --- Assessment listing ---

// AssessmentSummaryDTO is one assessment row in listing responses. Title is
// the normalized display title; OriginalTitle keeps what was stored.
type AssessmentSummaryDTO struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	OriginalTitle   string `json:"original_title,omitempty"`
	SkillName       string `json:"skill_name"`
	SkillDomain     string `json:"skill_domain"`
	Description     string `json:"description,omitempty"`
	QuestionCount   int    `json:"question_count"`
	DurationMinutes int    `json:"duration_minutes"`
	Difficulty      string `json:"difficulty"`
	MarketDemand    int    `json:"market_demand,omitempty"`
}

// CourseSummaryDTO groups assessments under a normalized skill domain.
type CourseSummaryDTO struct {
	SkillDomain string                 `json:"skill_domain"`
	SkillName   string                 `json:"skill_name"`
	TestCount   int                    `json:"test_count"`
	Progress    int                    `json:"progress"`
	Assessments []AssessmentSummaryDTO `json:"assessments"`
}

// AssessmentListDTO is the payload of GET /api/getAssessments.
type AssessmentListDTO struct {
	Assessments []AssessmentSummaryDTO `json:"assessments"`
	Courses     []CourseSummaryDTO     `json:"courses"`
}

// CourseAssessmentsDTO is the payload of GET /api/assessments/by_course/:course.
type CourseAssessmentsDTO struct {
	CourseName  string                 `json:"course_name"`
	Assessments []AssessmentSummaryDTO `json:"assessments"`
	Total       int                    `json:"total"`
}

// AssessmentStatsDTO is the admin stats payload.
type AssessmentStatsDTO struct {
	TotalAssessments      int            `json:"total_assessments"`
	TotalQuestions        int            `json:"total_questions"`
	QuestionsByDifficulty map[string]int `json:"questions_by_difficulty"`
}

// AssessmentResponseDTO is the full admin view of an assessment.
type AssessmentResponseDTO struct {
	ID              uint                  `json:"id"`
	CourseID        *uint                 `json:"course_id,omitempty"`
	Title           string                `json:"title"`
	Description     string                `json:"description,omitempty"`
	SkillDomain     string                `json:"skill_domain"`
	Difficulty      string                `json:"difficulty"`
	QuestionCount   int                   `json:"question_count"`
	DurationMinutes int                   `json:"duration_minutes"`
	PassingScore    float64               `json:"passing_score"`
	QuestionWeight  float64               `json:"question_weight"`
	Status          string                `json:"status"`
	Questions       []QuestionDetailDTO   `json:"questions,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// QuestionDetailDTO includes the correct answer; admin-only.
type QuestionDetailDTO struct {
	ID            uint     `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty"`
	Topic         string   `json:"topic,omitempty"`
}

// --- Attempt flow ---

// QuestionPublicDTO is a question as served to a test taker: the correct
// answer and explanation are stripped.
type QuestionPublicDTO struct {
	ID         uint     `json:"id"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
}

// AttemptStartDTO is returned when an attempt is opened, implicitly or via
// POST /api/startAssessment.
type AttemptStartDTO struct {
	AttemptID        uint                `json:"attempt_id"`
	AssessmentID     uint                `json:"assessment_id"`
	Title            string              `json:"title"`
	Questions        []QuestionPublicDTO `json:"questions"`
	DurationMinutes  int                 `json:"duration_minutes"`
	TimeRemainingSec int                 `json:"time_remaining_seconds"`
	StartedAt        time.Time           `json:"started_at"`
}

// QuestionResultDTO is the per-question breakdown in a finalized result.
type QuestionResultDTO struct {
	QuestionID     uint   `json:"question_id"`
	QuestionText   string `json:"question_text"`
	SelectedOption string `json:"selected_option"`
	CorrectAnswer  string `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
	Explanation    string `json:"explanation,omitempty"`
}

// ResultDTO is the frozen outcome of one attempt. PercentageScore carries the
// display form, rounded to one decimal; the database row keeps full
// precision. Both the submit response and a later result fetch are built
// from the same Result row, so their score fields always match.
type ResultDTO struct {
	AttemptID       uint                `json:"attempt_id"`
	AssessmentID    uint                `json:"assessment_id"`
	AssessmentTitle string              `json:"assessment_title,omitempty"`
	SkillDomain     string              `json:"skill_domain,omitempty"`
	AttemptStatus   string              `json:"attempt_status"`
	Score           float64             `json:"score"`
	MaxScore        float64             `json:"max_score"`
	PercentageScore float64             `json:"percentage_score"`
	Passed          bool                `json:"passed"`
	CorrectCount    int                 `json:"correct_count"`
	TotalQuestions  int                 `json:"total_questions"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	DurationMinutes int                 `json:"duration_minutes"`
	Feedback        string              `json:"feedback,omitempty"`
	Warnings        []string            `json:"warnings,omitempty"`
	Results         []QuestionResultDTO `json:"results"`
}

// --- Progress ---

type SkillProgressDTO struct {
	UserLevel   int `json:"user_level"`
	TargetLevel int `json:"target_level"`
	Attempts    int `json:"attempts"`
}

type RecentAssessmentDTO struct {
	AttemptID       uint       `json:"id"`
	SkillName       string     `json:"skill_name"`
	Title           string     `json:"title"`
	Score           float64    `json:"score"`
	MaxScore        float64    `json:"max_score"`
	Date            *time.Time `json:"date,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
}

// ProgressDTO is the payload of GET /api/getProgress.
type ProgressDTO struct {
	TotalAssessments  int                         `json:"total_assessments"`
	AvgScore          float64                     `json:"avg_score"`
	SkillProgress     map[string]SkillProgressDTO `json:"skill_progress"`
	CompetencyScores  map[string]int              `json:"competency_scores"`
	RecentAssessments []RecentAssessmentDTO       `json:"recent_assessments"`
}
