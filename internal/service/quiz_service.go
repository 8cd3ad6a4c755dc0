package service

import (
	"context"
	"errors"
	"lingo_backend/internal/model"
	"lingo_backend/pkg/logger"

	"go.uber.org/zap"
)

// QuizService 把一次测验提交串起来：记录作答，更新课时进度，必要时完成课时并检查证书
type QuizService struct {
	Attempts *AttemptService
	Progress *ProgressService
}

func NewQuizService(attempts *AttemptService, progress *ProgressService) *QuizService {
	return &QuizService{Attempts: attempts, Progress: progress}
}

type QuizSubmission struct {
	Answers []AnswerInput `json:"answers" binding:"dive"`
}

type QuizSubmissionResult struct {
	Score           int                        `json:"score"`
	CorrectAnswers  int                        `json:"correctAnswers"`
	TotalQuestions  int                        `json:"totalQuestions"`
	Passed          bool                       `json:"passed"`
	TotalAttempts   int                        `json:"totalAttempts"`
	BestScore       int                        `json:"bestScore"`
	LessonCompleted bool                       `json:"lessonCompleted"`
	Certificate     *model.CertificateDecision `json:"certificate,omitempty"`
}

func (s *QuizService) Status(ctx context.Context, learnerID, lessonID uint) (*model.MasteryStatus, error) {
	return s.Attempts.StatusForDisplay(ctx, lessonID, learnerID)
}

func (s *QuizService) Submit(ctx context.Context, learnerID, lessonID uint, submission QuizSubmission) (*QuizSubmissionResult, error) {
	res, err := s.Attempts.RecordSubmission(ctx, lessonID, learnerID, submission.Answers)
	if err != nil {
		var passedErr *AlreadyPassedError
		if errors.As(err, &passedErr) {
			s.repairCompletion(ctx, learnerID, lessonID)
		}
		return nil, err
	}

	if _, err := s.Progress.MarkLessonStarted(ctx, learnerID, lessonID); err != nil {
		return nil, err
	}

	out := &QuizSubmissionResult{
		Score:          res.ScorePercent,
		CorrectAnswers: res.CorrectCount,
		TotalQuestions: res.TotalQuestions,
		Passed:         res.Passed,
		TotalAttempts:  res.AttemptCount,
		BestScore:      res.BestScore,
	}

	if res.LessonCompletionDue {
		decision, err := s.Progress.MarkLessonCompleted(ctx, learnerID, lessonID)
		if err != nil {
			return nil, err
		}
		out.LessonCompleted = true
		if decision.CourseDone {
			out.Certificate = decision
		}
	}

	return out, nil
}

// repairCompletion 已通过但课时未完成时补做完成；完成是幂等的，失败只记录
func (s *QuizService) repairCompletion(ctx context.Context, learnerID, lessonID uint) {
	if _, err := s.Progress.MarkLessonCompleted(ctx, learnerID, lessonID); err != nil {
		logger.Log.Warn("complete passed lesson failed",
			zap.Uint("learnerId", learnerID),
			zap.Uint("lessonId", lessonID),
			zap.Error(err),
		)
	}
}
