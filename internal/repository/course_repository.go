package repository

import (
	"context"
	"errors"
	"lingo_backend/internal/model"
	"lingo_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Order("id asc").Find(&courses).Error
	return courses, err
}

// FindCourse 带上按顺序排列的课时列表
func (r *CourseRepository) FindCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc, id asc")
		}).
		First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).First(&lesson, lessonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) GetLessonQuestions(ctx context.Context, lessonID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("sort_order asc, id asc").
		Find(&qs).Error
	return qs, err
}

// GetCourseLessons 只取课时 ID
func (r *CourseRepository) GetCourseLessons(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Order("sort_order asc, id asc").
		Pluck("id", &ids).Error
	return ids, err
}
