package dto

// QuestionCreateDTO is used within AssessmentCreateDTO and for adding single
// questions to an existing assessment.
type QuestionCreateDTO struct {
	Prompt        string   `json:"prompt" binding:"required"`
	Options       []string `json:"options" binding:"required,len=4,dive,required"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,oneof=A B C D"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Topic         string   `json:"topic"`
}

// AssessmentCreateDTO is for admin to create a new assessment, optionally
// with its question set inline.
type AssessmentCreateDTO struct {
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description,omitempty"`
	SkillDomain     string              `json:"skill_domain" binding:"required"`
	Difficulty      string              `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	QuestionCount   int                 `json:"question_count" binding:"omitempty,min=1,max=30"`
	DurationMinutes int                 `json:"duration_minutes" binding:"omitempty,min=1"`
	PassingScore    float64             `json:"passing_score" binding:"omitempty,gte=0,lte=100"`
	QuestionWeight  float64             `json:"question_weight" binding:"omitempty,gt=0"`
	Publish         bool                `json:"publish"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
}

// GenerateQuestionsDTO asks the LLM collaborator to generate questions for an
// existing assessment.
type GenerateQuestionsDTO struct {
	Count       int    `json:"count" binding:"omitempty,min=1,max=30"`
	SourceTitle string `json:"source_title"`
}
