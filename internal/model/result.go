package model

import (
	"time"

	"gorm.io/gorm"
)

// Result is the frozen score snapshot of one finalized attempt. The unique
// index on AttemptID is what guarantees "exactly one Result per attempt"
// under concurrent duplicate submits. Score fields are never mutated after
// creation; OverallFeedback may be filled in later (best-effort).
type Result struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	AttemptID       uint           `json:"attempt_id" gorm:"not null;uniqueIndex"`
	AssessmentID    uint           `json:"assessment_id" gorm:"index"`
	UserID          *uint          `json:"user_id,omitempty" gorm:"index"`
	TotalScore      float64        `json:"total_score"`
	MaxScore        float64        `json:"max_score"`
	PercentageScore float64        `json:"percentage_score"` // full precision
	PassingScore    float64        `json:"passing_score"`
	Passed          bool           `json:"passed"`
	OverallFeedback string         `json:"overall_feedback,omitempty" gorm:"type:text"`
	GeneratedAt     time.Time      `json:"generated_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
