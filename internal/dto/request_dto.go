package dto

// AnswerSubmission is one user's answer to a single question. Answer is the
// option label ("A".."D") or the full option text; the scorer normalizes it.
type AnswerSubmission struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// SubmitAssessmentRequest is the body of POST /api/submitAssessment. Answers
// may be empty; unanswered questions score zero.
type SubmitAssessmentRequest struct {
	AttemptID uint               `json:"attempt_id" binding:"required"`
	Answers   []AnswerSubmission `json:"answers" binding:"dive"`
}

// StartAssessmentRequest finds or creates an assessment for a skill and opens
// an attempt against it.
type StartAssessmentRequest struct {
	SkillName    string `json:"skill_name" binding:"required"`
	NumQuestions int    `json:"num_questions" binding:"omitempty,min=1,max=30"`
	UserID       *uint  `json:"user_id"` // Temporary, for non-auth user identification
}
