package repository

import (
	"github.com/skillcap/assessment-api/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(assessment *model.Assessment) error
	Update(assessment *model.Assessment) error
	FindByID(id uint) (*model.Assessment, error)
	FindByIDWithQuestions(id uint) (*model.Assessment, error)
	FindAllListable() ([]model.Assessment, error)
	FindPublishedBySkillDomain(skillDomain string) ([]model.Assessment, error)
	CountAll() (int64, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(assessment *model.Assessment) error {
	// GORM creates associated questions when assessment.Questions is populated.
	return r.db.Create(assessment).Error
}

func (r *assessmentRepository) Update(assessment *model.Assessment) error {
	return r.db.Save(assessment).Error
}

func (r *assessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	if err := r.db.First(&assessment, id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByIDWithQuestions(id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.id ASC")
	}).First(&assessment, id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

// FindAllListable returns everything except archived assessments, newest
// first. Draft rows are kept visible so generated-but-unpublished material
// still shows up on the dashboard.
func (r *assessmentRepository) FindAllListable() ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.db.
		Where("status <> ?", model.AssessmentStatusArchived).
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepository) FindPublishedBySkillDomain(skillDomain string) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.db.
		Where("status = ?", model.AssessmentStatusPublished).
		Where("LOWER(skill_domain) = LOWER(?)", skillDomain).
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Assessment{}).Count(&count).Error
	return count, err
}
