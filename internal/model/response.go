package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ResponseStatusScored  = "scored"
	ResponseStatusSkipped = "skipped"
)

// Response records one answer within an attempt, created at submission time.
// The composite unique index enforces at most one Response per
// (attempt, question). The question prompt and correct label are snapshotted
// here so a later edit or delete of the Question cannot rewrite history.
type Response struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	AttemptID      uint           `json:"attempt_id" gorm:"not null;uniqueIndex:idx_responses_attempt_question"`
	QuestionID     uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_responses_attempt_question"`
	QuestionPrompt string         `json:"question_prompt" gorm:"type:text"`
	CorrectAnswer  string         `json:"correct_answer"`
	SelectedOption string         `json:"selected_option"`
	Score          float64        `json:"score"`
	MaxScore       float64        `json:"max_score"`
	Status         string         `json:"status" gorm:"default:'scored'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
