package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	AssessmentStatusDraft     = "draft"
	AssessmentStatusPublished = "published"
	AssessmentStatusArchived  = "archived"
)

type Assessment struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CourseID        *uint          `json:"course_id,omitempty" gorm:"index"`
	Title           string         `json:"title" gorm:"not null"`
	Description     string         `json:"description,omitempty"`
	SkillDomain     string         `json:"skill_domain" gorm:"not null;index"`
	Difficulty      string         `json:"difficulty" gorm:"default:'medium'"` // "easy", "medium", "hard"
	QuestionCount   int            `json:"question_count" gorm:"default:10"`
	DurationMinutes int            `json:"duration_minutes" gorm:"default:30"`
	PassingScore    float64        `json:"passing_score" gorm:"default:60"` // percentage threshold
	QuestionWeight  float64        `json:"question_weight" gorm:"default:1"`
	Status          string         `json:"status" gorm:"default:'draft'"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
	Attempts        []Attempt      `json:"attempts,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
