package service

import (
	"context"
	"errors"
	"lingo_backend/internal/model"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/logger"
	"lingo_backend/pkg/monitoring"
	"lingo_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CertificateScore 证书固定分数，不取各课成绩
const CertificateScore = 100

// ProgressService 维护课时进度与课程证书
type ProgressService struct {
	Progress     ProgressStore
	Courses      CourseStore
	Certificates CertificateStore
	Now          func() time.Time
}

func NewProgressService(progress ProgressStore, courses CourseStore, certificates CertificateStore) *ProgressService {
	return &ProgressService{
		Progress:     progress,
		Courses:      courses,
		Certificates: certificates,
		Now:          time.Now,
	}
}

func (s *ProgressService) lesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.Courses.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			return nil, err
		}
		return nil, storageError("get lesson", err)
	}
	return lesson, nil
}

// MarkLessonStarted NotStarted -> InProgress，已存在记录时不变
func (s *ProgressService) MarkLessonStarted(ctx context.Context, learnerID, lessonID uint) (*model.LessonProgress, error) {
	if _, err := s.lesson(ctx, lessonID); err != nil {
		return nil, err
	}

	p, err := s.Progress.EnsureLessonProgress(ctx, learnerID, lessonID, s.Now())
	if err != nil {
		return nil, storageError("ensure lesson progress", err)
	}
	return p, nil
}

// MarkLessonCompleted 幂等；每次都会重新检查课程是否完成，便于补发证书
func (s *ProgressService) MarkLessonCompleted(ctx context.Context, learnerID, lessonID uint) (*model.CertificateDecision, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.MarkLessonCompleted")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("lesson.id", int64(lessonID)),
		attribute.Int64("learner.id", int64(learnerID)),
	)

	lesson, err := s.lesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	changed, err := s.Progress.MarkLessonCompleted(ctx, learnerID, lessonID, s.Now())
	if err != nil {
		return nil, storageError("mark lesson completed", err)
	}
	if changed {
		monitoring.LessonsCompleted.Inc()
		logger.Log.Info("lesson completed",
			zap.Uint("learnerId", learnerID),
			zap.Uint("lessonId", lessonID),
		)
	}

	decision, err := s.CheckCourseCompletion(ctx, learnerID, lesson.CourseID)
	if err != nil {
		// 课时已完成，证书检查失败不影响本次结果，下次触发时会重试
		monitoring.CertificateFailures.Inc()
		logger.Log.Error("course completion check failed",
			zap.Uint("learnerId", learnerID),
			zap.Uint("courseId", lesson.CourseID),
			zap.Error(err),
		)
		return &model.CertificateDecision{CourseID: lesson.CourseID}, nil
	}
	return decision, nil
}

// CompleteLessonWithoutQuiz 只允许没有测验的课时手动完成
func (s *ProgressService) CompleteLessonWithoutQuiz(ctx context.Context, learnerID, lessonID uint) (*model.CertificateDecision, error) {
	if _, err := s.lesson(ctx, lessonID); err != nil {
		return nil, err
	}

	questions, err := s.Courses.GetLessonQuestions(ctx, lessonID)
	if err != nil {
		return nil, storageError("get lesson questions", err)
	}
	if len(questions) > 0 {
		return nil, util.ErrLessonHasQuiz
	}

	return s.MarkLessonCompleted(ctx, learnerID, lessonID)
}

// CheckCourseCompletion 所有课时完成且尚无证书时发证；只在课时完成路径上调用
func (s *ProgressService) CheckCourseCompletion(ctx context.Context, learnerID, courseID uint) (*model.CertificateDecision, error) {
	decision := &model.CertificateDecision{CourseID: courseID}

	lessonIDs, err := s.Courses.GetCourseLessons(ctx, courseID)
	if err != nil {
		return nil, storageError("get course lessons", err)
	}
	if len(lessonIDs) == 0 {
		return decision, nil
	}

	progress, err := s.Progress.ListLessonProgress(ctx, learnerID, lessonIDs)
	if err != nil {
		return nil, storageError("list lesson progress", err)
	}
	for _, id := range lessonIDs {
		if p, ok := progress[id]; !ok || !p.Completed {
			return decision, nil
		}
	}
	decision.CourseDone = true

	exists, err := s.Certificates.CertificateExists(ctx, learnerID, courseID)
	if err != nil {
		return nil, storageError("certificate exists", err)
	}
	if exists {
		decision.AlreadyIssued = true
		decision.Score = CertificateScore
		return decision, nil
	}

	cert := &model.Certificate{
		LearnerID: learnerID,
		CourseID:  courseID,
		Score:     CertificateScore,
		IssuedAt:  s.Now(),
	}
	if err := s.Certificates.CreateCertificate(ctx, cert); err != nil {
		if errors.Is(err, util.ErrCertificateExists) {
			// 并发完成时另一请求已发证
			decision.AlreadyIssued = true
			decision.Score = CertificateScore
			return decision, nil
		}
		monitoring.CertificateFailures.Inc()
		logger.Log.Error("create certificate failed",
			zap.Uint("learnerId", learnerID),
			zap.Uint("courseId", courseID),
			zap.Error(err),
		)
		return decision, nil
	}

	monitoring.CertificatesIssued.Inc()
	logger.Log.Info("certificate issued",
		zap.Uint("learnerId", learnerID),
		zap.Uint("courseId", courseID),
	)
	decision.Issued = true
	decision.Score = cert.Score
	return decision, nil
}

// AddTimeSpent 累加学习时长（秒）
func (s *ProgressService) AddTimeSpent(ctx context.Context, learnerID, lessonID uint, seconds int) (*model.LessonEntry, error) {
	if seconds < 0 {
		return nil, &ValidationError{Field: "seconds", Detail: "time spent cannot be negative"}
	}
	if _, err := s.lesson(ctx, lessonID); err != nil {
		return nil, err
	}

	if err := s.Progress.AddTimeSpent(ctx, learnerID, lessonID, seconds, s.Now()); err != nil {
		return nil, storageError("add time spent", err)
	}
	return s.LessonProgress(ctx, learnerID, lessonID)
}

func (s *ProgressService) LessonProgress(ctx context.Context, learnerID, lessonID uint) (*model.LessonEntry, error) {
	if _, err := s.lesson(ctx, lessonID); err != nil {
		return nil, err
	}

	p, err := s.Progress.GetLessonProgress(ctx, learnerID, lessonID)
	if err != nil {
		return nil, storageError("get lesson progress", err)
	}
	return lessonEntry(lessonID, p), nil
}

func (s *ProgressService) CourseProgress(ctx context.Context, learnerID, courseID uint) (*model.CourseProgress, error) {
	if _, err := s.Courses.FindCourse(ctx, courseID); err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			return nil, err
		}
		return nil, storageError("find course", err)
	}

	lessonIDs, err := s.Courses.GetCourseLessons(ctx, courseID)
	if err != nil {
		return nil, storageError("get course lessons", err)
	}
	progress, err := s.Progress.ListLessonProgress(ctx, learnerID, lessonIDs)
	if err != nil {
		return nil, storageError("list lesson progress", err)
	}

	out := &model.CourseProgress{
		CourseID:     courseID,
		TotalLessons: len(lessonIDs),
		Lessons:      make([]model.LessonEntry, 0, len(lessonIDs)),
	}
	for _, id := range lessonIDs {
		var p *model.LessonProgress
		if row, ok := progress[id]; ok {
			p = &row
		}
		entry := lessonEntry(id, p)
		if entry.State == model.LessonCompleted {
			out.CompletedLessons++
		}
		out.Lessons = append(out.Lessons, *entry)
	}
	if out.TotalLessons > 0 {
		out.Percent = ScorePercent(out.CompletedLessons, out.TotalLessons)
	}

	cert, err := s.Certificates.FindCertificate(ctx, learnerID, courseID)
	if err != nil {
		return nil, storageError("find certificate", err)
	}
	out.Certificate = cert
	return out, nil
}

func (s *ProgressService) ListCertificates(ctx context.Context, learnerID uint) ([]model.Certificate, error) {
	certs, err := s.Certificates.ListCertificates(ctx, learnerID)
	if err != nil {
		return nil, storageError("list certificates", err)
	}
	return certs, nil
}

func lessonEntry(lessonID uint, p *model.LessonProgress) *model.LessonEntry {
	entry := &model.LessonEntry{
		LessonID: lessonID,
		State:    p.State(),
	}
	if p != nil {
		entry.TimeSpent = p.TimeSpent
		entry.CompletedAt = p.CompletedAt
	}
	return entry
}
