package service

import (
	"context"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
)

// CatalogService 只读的课程/课时查询，题目不带标准答案
type CatalogService struct {
	CourseRepo *repository.CourseRepository
}

func NewCatalogService(courseRepo *repository.CourseRepository) *CatalogService {
	return &CatalogService{CourseRepo: courseRepo}
}

type LessonDetail struct {
	model.Lesson
	QuestionCount int `json:"questionCount"`
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.CourseRepo.ListCourses(ctx)
}

func (s *CatalogService) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	return s.CourseRepo.FindCourse(ctx, courseID)
}

func (s *CatalogService) GetLesson(ctx context.Context, lessonID uint) (*LessonDetail, error) {
	lesson, err := s.CourseRepo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	qs, err := s.CourseRepo.GetLessonQuestions(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	lesson.Questions = qs

	return &LessonDetail{Lesson: *lesson, QuestionCount: len(qs)}, nil
}
