package repository

import (
	"github.com/skillcap/assessment-api/internal/model"
	"gorm.io/gorm"
)

type CourseRepository interface {
	FindOrCreate(name, description string) (*model.Course, error)
	FindAll() ([]model.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) FindOrCreate(name, description string) (*model.Course, error) {
	var course model.Course
	err := r.db.Where(model.Course{Name: name}).
		Attrs(model.Course{Description: description}).
		FirstOrCreate(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindAll() ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.Order("name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
