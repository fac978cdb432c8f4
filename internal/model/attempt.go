package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
	AttemptStatusTimedOut   = "timed_out"
	AttemptStatusAbandoned  = "abandoned"
)

// Attempt is one run of an assessment by one user. DurationMinutes is
// snapshotted from the assessment at start so later edits don't change the
// time budget of an open attempt. CompletedAt is set iff the status is
// terminal.
type Attempt struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	AssessmentID     uint           `json:"assessment_id" gorm:"not null;index"`
	Assessment       Assessment     `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	UserID           *uint          `json:"user_id,omitempty" gorm:"index"`
	Status           string         `json:"status" gorm:"default:'in_progress'"`
	StartedAt        time.Time      `json:"started_at" gorm:"not null"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	DurationMinutes  int            `json:"duration_minutes" gorm:"not null"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	TotalScore       float64        `json:"total_score"`
	MaxScore         float64        `json:"max_score"`
	PercentageScore  float64        `json:"percentage_score"`
	Responses        []Response     `json:"responses,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// Terminal reports whether no further transition may leave the current status.
func (a *Attempt) Terminal() bool {
	switch a.Status {
	case AttemptStatusCompleted, AttemptStatusTimedOut, AttemptStatusAbandoned:
		return true
	}
	return false
}

// Deadline is the wall-clock instant at which the time budget runs out.
func (a *Attempt) Deadline() time.Time {
	return a.StartedAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// TimeRemaining returns the remaining budget in seconds, floored at zero.
func (a *Attempt) TimeRemaining(now time.Time) int {
	remaining := a.Deadline().Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}
