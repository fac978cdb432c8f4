package repository

import (
	"github.com/skillcap/assessment-api/internal/model"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	FindByAttemptID(attemptID uint) ([]model.Response, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// Responses are written inside the finalize transaction (see ResultService),
// so this repository only reads.
func (r *responseRepository) FindByAttemptID(attemptID uint) ([]model.Response, error) {
	var responses []model.Response
	err := r.db.Where("attempt_id = ?", attemptID).Order("id ASC").Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}
