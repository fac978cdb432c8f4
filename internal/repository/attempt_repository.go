package repository

import (
	"github.com/skillcap/assessment-api/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	Update(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByIDWithResponses(id uint) (*model.Attempt, error)
	FindInProgress() ([]model.Attempt, error)
	FindFinished(userID *uint, limit int) ([]model.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) Update(attempt *model.Attempt) error {
	return r.db.Save(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.Preload("Assessment").First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithResponses(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Assessment").
		Preload("Responses").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindInProgress() ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.
		Where("status = ?", model.AttemptStatusInProgress).
		Order("started_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// FindFinished returns completed and timed-out attempts, most recently
// finished first. Abandoned attempts never carry a result and are excluded.
func (r *attemptRepository) FindFinished(userID *uint, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.db.
		Preload("Assessment").
		Where("status IN ?", []string{model.AttemptStatusCompleted, model.AttemptStatusTimedOut}).
		Order("completed_at DESC")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
