package service

import (
	"context"
	"errors"
	"fmt"
	"lingo_backend/internal/model"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/logger"
	"lingo_backend/pkg/monitoring"
	"lingo_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AttemptService 重建作答会话、计算掌握状态，并负责记录测验提交
type AttemptService struct {
	Attempts AttemptStore
	Courses  CourseStore
	Cache    StatusCache
	Group    GroupingStrategy
	Now      func() time.Time
}

func NewAttemptService(attempts AttemptStore, courses CourseStore, cache StatusCache, grouping string) *AttemptService {
	return &AttemptService{
		Attempts: attempts,
		Courses:  courses,
		Cache:    cache,
		Group:    GroupingFor(grouping),
		Now:      time.Now,
	}
}

type AnswerInput struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// SubmissionResult 本次提交的得分以及提交后的掌握状态
type SubmissionResult struct {
	ScorePercent   int
	CorrectCount   int
	TotalQuestions int
	Passed         bool
	BestScore      int
	AttemptCount   int
	// LessonCompletionDue 为 true 时调用方需要触发课时完成
	LessonCompletionDue bool
}

func (s *AttemptService) ComputeStatus(ctx context.Context, lessonID, learnerID uint) (*model.MasteryStatus, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.ComputeStatus")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("lesson.id", int64(lessonID)),
		attribute.Int64("learner.id", int64(learnerID)),
	)

	if _, err := s.Courses.GetLesson(ctx, lessonID); err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			return nil, err
		}
		return nil, storageError("get lesson", err)
	}

	if cached, ok := s.cacheGet(ctx, learnerID, lessonID); ok {
		return cached, nil
	}

	questions, err := s.Courses.GetLessonQuestions(ctx, lessonID)
	if err != nil {
		return nil, storageError("get lesson questions", err)
	}

	status, err := s.statusFor(ctx, lessonID, learnerID, questions)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, learnerID, lessonID, status)
	return status, nil
}

// StatusForDisplay 读路径：存储失败时返回保守的默认值而不是报错
func (s *AttemptService) StatusForDisplay(ctx context.Context, lessonID, learnerID uint) (*model.MasteryStatus, error) {
	status, err := s.ComputeStatus(ctx, lessonID, learnerID)
	if err == nil {
		return status, nil
	}
	if errors.Is(err, util.ErrLessonNotFound) {
		return nil, err
	}

	logger.Log.Warn("mastery status unavailable, using fallback",
		zap.Uint("lessonId", lessonID),
		zap.Uint("learnerId", learnerID),
		zap.Error(err),
	)
	return &model.MasteryStatus{
		HasQuestions: true,
		CanAttempt:   true,
	}, nil
}

func (s *AttemptService) statusFor(ctx context.Context, lessonID, learnerID uint, questions []model.Question) (*model.MasteryStatus, error) {
	if len(questions) == 0 {
		return FoldStatus(nil, false), nil
	}

	attempts, err := s.Attempts.ListAttempts(ctx, learnerID, lessonID)
	if err != nil {
		return nil, storageError("list attempts", err)
	}

	sessions := s.Group(attempts, questionIDs(questions))
	return FoldStatus(sessions, true), nil
}

// RecordSubmission 已通过拦截 -> 校验 -> 判分 -> 整批写入 -> 重新计算状态
func (s *AttemptService) RecordSubmission(ctx context.Context, lessonID, learnerID uint, answers []AnswerInput) (*SubmissionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.RecordSubmission")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("lesson.id", int64(lessonID)),
		attribute.Int64("learner.id", int64(learnerID)),
		attribute.Int("answers", len(answers)),
	)

	result, err := s.recordSubmission(ctx, lessonID, learnerID, answers)

	var validationErr *ValidationError
	var passedErr *AlreadyPassedError
	switch {
	case err == nil && result.Passed:
		monitoring.QuizSubmissions.WithLabelValues(monitoring.OutcomePassed).Inc()
	case err == nil:
		monitoring.QuizSubmissions.WithLabelValues(monitoring.OutcomeFailed).Inc()
	case errors.As(err, &passedErr):
		monitoring.QuizSubmissions.WithLabelValues(monitoring.OutcomeAlreadyPassed).Inc()
	case errors.As(err, &validationErr), errors.Is(err, util.ErrLessonNotFound):
		monitoring.QuizSubmissions.WithLabelValues(monitoring.OutcomeInvalid).Inc()
	default:
		monitoring.QuizSubmissions.WithLabelValues(monitoring.OutcomeError).Inc()
		span.RecordError(err)
	}
	return result, err
}

func (s *AttemptService) recordSubmission(ctx context.Context, lessonID, learnerID uint, answers []AnswerInput) (*SubmissionResult, error) {
	if _, err := s.Courses.GetLesson(ctx, lessonID); err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			return nil, err
		}
		return nil, storageError("get lesson", err)
	}

	questions, err := s.Courses.GetLessonQuestions(ctx, lessonID)
	if err != nil {
		return nil, storageError("get lesson questions", err)
	}
	if len(questions) == 0 {
		return nil, &ValidationError{Field: "lessonId", Detail: fmt.Sprintf("lesson %d has no quiz", lessonID)}
	}

	// 先拦截已通过，再校验答案
	current, err := s.statusFor(ctx, lessonID, learnerID, questions)
	if err != nil {
		return nil, err
	}
	if current.HasPassed {
		return nil, &AlreadyPassedError{BestScore: current.BestScore}
	}

	if len(answers) == 0 {
		return nil, &ValidationError{Field: "answers", Detail: "at least one answer is required"}
	}
	if err := validateAnswers(lessonID, questions, answers); err != nil {
		return nil, err
	}

	canonical := make(map[uint]string, len(questions))
	for _, q := range questions {
		canonical[q.ID] = q.CorrectAnswer
	}

	// 每个答案一行；只答了部分题目的批次不构成完整会话
	now := s.Now()
	batchID := model.NewBatchID()
	attempts := make([]model.QuestionAttempt, 0, len(answers))
	correct := 0
	for _, a := range answers {
		isCorrect := gradeAnswer(a.Answer, canonical[a.QuestionID])
		if isCorrect {
			correct++
		}
		attempts = append(attempts, model.QuestionAttempt{
			LearnerID:         learnerID,
			LessonID:          lessonID,
			QuestionID:        a.QuestionID,
			SubmittedAnswer:   a.Answer,
			IsCorrect:         isCorrect,
			SubmittedAt:       now,
			SubmissionBatchID: batchID,
		})
	}

	if err := s.Attempts.InsertAttempts(ctx, attempts); err != nil {
		return nil, storageError("insert attempts", err)
	}
	s.cacheInvalidate(ctx, learnerID, lessonID)

	complete := len(answers) == len(questions)
	score := ScorePercent(correct, len(questions))
	passed := complete && score >= model.PassThreshold

	updated, err := s.statusFor(ctx, lessonID, learnerID, questions)
	if err != nil {
		// 作答已写入，重算失败时用本次结果推算
		logger.Log.Warn("recompute mastery status after submission failed",
			zap.Uint("lessonId", lessonID),
			zap.Uint("learnerId", learnerID),
			zap.Error(err),
		)
		updated = &model.MasteryStatus{
			HasQuestions:         true,
			BestScore:            current.BestScore,
			HasPassed:            passed,
			CompleteAttemptCount: current.CompleteAttemptCount,
		}
		if complete {
			updated.BestScore = max(current.BestScore, score)
			updated.CompleteAttemptCount++
		}
		updated.CanAttempt = !updated.HasPassed
	}

	logger.Log.Info("quiz submission recorded",
		zap.Uint("lessonId", lessonID),
		zap.Uint("learnerId", learnerID),
		zap.String("batchId", batchID),
		zap.Int("score", score),
		zap.Bool("passed", passed),
	)

	return &SubmissionResult{
		ScorePercent:        score,
		CorrectCount:        correct,
		TotalQuestions:      len(questions),
		Passed:              passed,
		BestScore:           updated.BestScore,
		AttemptCount:        updated.CompleteAttemptCount,
		LessonCompletionDue: updated.HasPassed,
	}, nil
}

// validateAnswers 题目必须属于该课且不能重复
func validateAnswers(lessonID uint, questions []model.Question, answers []AnswerInput) error {
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	seen := make(map[uint]bool, len(answers))
	for i, a := range answers {
		if !known[a.QuestionID] {
			return &ValidationError{
				Field:  fmt.Sprintf("answers[%d].questionId", i),
				Detail: fmt.Sprintf("question %d does not belong to lesson %d", a.QuestionID, lessonID),
			}
		}
		if seen[a.QuestionID] {
			return &ValidationError{
				Field:  fmt.Sprintf("answers[%d].questionId", i),
				Detail: fmt.Sprintf("question %d answered more than once", a.QuestionID),
			}
		}
		seen[a.QuestionID] = true
	}
	return nil
}

// gradeAnswer 与标准答案精确匹配
func gradeAnswer(submitted, canonical string) bool {
	return submitted == canonical
}

func questionIDs(questions []model.Question) []uint {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

// 只缓存已通过的状态：通过是终态，不会因为缓存过期而倒退
func (s *AttemptService) cacheGet(ctx context.Context, learnerID, lessonID uint) (*model.MasteryStatus, bool) {
	if s.Cache == nil {
		return nil, false
	}
	return s.Cache.Get(ctx, learnerID, lessonID)
}

func (s *AttemptService) cacheSet(ctx context.Context, learnerID, lessonID uint, status *model.MasteryStatus) {
	if s.Cache == nil || !status.HasPassed {
		return
	}
	if err := s.Cache.Set(ctx, learnerID, lessonID, status); err != nil {
		logger.Log.Warn("cache mastery status failed", zap.Error(err))
	}
}

func (s *AttemptService) cacheInvalidate(ctx context.Context, learnerID, lessonID uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, learnerID, lessonID); err != nil {
		logger.Log.Warn("invalidate mastery status failed", zap.Error(err))
	}
}
