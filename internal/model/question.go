package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is one MCQ item. Options are ordered; their display labels (A-D)
// are positional and never stored. AssessmentID is nullable so freshly
// generated questions can exist before being drawn into an assessment.
type Question struct {
	ID            uint                         `gorm:"primarykey" json:"id"`
	AssessmentID  *uint                        `json:"assessment_id,omitempty" gorm:"index"`
	Prompt        string                       `json:"prompt" gorm:"type:text;not null"`
	Options       datatypes.JSONSlice[string]  `json:"options" gorm:"not null"`
	CorrectAnswer string                       `json:"correct_answer" gorm:"not null"` // label, "A".."D"
	Explanation   string                       `json:"explanation,omitempty" gorm:"type:text"`
	Difficulty    string                       `json:"difficulty" gorm:"default:'medium'"`
	Topic         string                       `json:"topic,omitempty" gorm:"index"`
	SourceTitle   string                       `json:"source_title,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
	DeletedAt     gorm.DeletedAt               `gorm:"index" json:"-"`
}
