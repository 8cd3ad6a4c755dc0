package service

import (
	"context"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"time"
)

// 核心组件只依赖以下存储接口，由 internal/repository 提供 GORM 实现

type AttemptStore interface {
	ListAttempts(ctx context.Context, learnerID, lessonID uint) ([]model.QuestionAttempt, error)
	InsertAttempts(ctx context.Context, attempts []model.QuestionAttempt) error
}

type CourseStore interface {
	FindCourse(ctx context.Context, courseID uint) (*model.Course, error)
	GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error)
	GetLessonQuestions(ctx context.Context, lessonID uint) ([]model.Question, error)
	GetCourseLessons(ctx context.Context, courseID uint) ([]uint, error)
}

type ProgressStore interface {
	GetLessonProgress(ctx context.Context, learnerID, lessonID uint) (*model.LessonProgress, error)
	EnsureLessonProgress(ctx context.Context, learnerID, lessonID uint, at time.Time) (*model.LessonProgress, error)
	MarkLessonCompleted(ctx context.Context, learnerID, lessonID uint, at time.Time) (bool, error)
	AddTimeSpent(ctx context.Context, learnerID, lessonID uint, seconds int, at time.Time) error
	ListLessonProgress(ctx context.Context, learnerID uint, lessonIDs []uint) (map[uint]model.LessonProgress, error)
}

type CertificateStore interface {
	CertificateExists(ctx context.Context, learnerID, courseID uint) (bool, error)
	CreateCertificate(ctx context.Context, cert *model.Certificate) error
	FindCertificate(ctx context.Context, learnerID, courseID uint) (*model.Certificate, error)
	ListCertificates(ctx context.Context, learnerID uint) ([]model.Certificate, error)
}

type StatusCache interface {
	Get(ctx context.Context, learnerID, lessonID uint) (*model.MasteryStatus, bool)
	Set(ctx context.Context, learnerID, lessonID uint, status *model.MasteryStatus) error
	Invalidate(ctx context.Context, learnerID, lessonID uint) error
}

var (
	_ AttemptStore     = (*repository.AttemptRepository)(nil)
	_ CourseStore      = (*repository.CourseRepository)(nil)
	_ ProgressStore    = (*repository.ProgressRepository)(nil)
	_ CertificateStore = (*repository.CertificateRepository)(nil)
	_ StatusCache      = (*repository.MasteryCacheRepository)(nil)
)
