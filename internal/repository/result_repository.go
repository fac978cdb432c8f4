package repository

import (
	"github.com/skillcap/assessment-api/internal/model"
	"gorm.io/gorm"
)

type ResultRepository interface {
	FindByAttemptID(attemptID uint) (*model.Result, error)
	FindByAttemptIDs(attemptIDs []uint) (map[uint]model.Result, error)
	UpdateFeedback(resultID uint, feedback string) error
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) FindByAttemptID(attemptID uint) (*model.Result, error) {
	var result model.Result
	if err := r.db.Where("attempt_id = ?", attemptID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) FindByAttemptIDs(attemptIDs []uint) (map[uint]model.Result, error) {
	results := make(map[uint]model.Result, len(attemptIDs))
	if len(attemptIDs) == 0 {
		return results, nil
	}
	var rows []model.Result
	if err := r.db.Where("attempt_id IN ?", attemptIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		results[row.AttemptID] = row
	}
	return results, nil
}

// UpdateFeedback fills in (or replaces) the best-effort feedback text. Score
// fields are append-only and never touched here.
func (r *resultRepository) UpdateFeedback(resultID uint, feedback string) error {
	return r.db.Model(&model.Result{}).
		Where("id = ?", resultID).
		Update("overall_feedback", feedback).Error
}
