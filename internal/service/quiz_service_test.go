package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizService_SubmitCompletesLessonAndCourse(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	qs := store.addLesson(testCourse, quizLesson, "Hello", "5")
	store.addLesson(testCourse, 11)

	attempts := newTestAttemptService(store, nil)
	progress := newTestProgressService(store)
	quiz := NewQuizService(attempts, progress)

	_, err := progress.CompleteLessonWithoutQuiz(ctx, testLearner, 11)
	require.NoError(t, err)

	failed, err := quiz.Submit(ctx, testLearner, quizLesson, QuizSubmission{Answers: answers(qs[0].ID, "Hello", qs[1].ID, "3")})
	require.NoError(t, err)
	assert.Equal(t, 50, failed.Score)
	assert.False(t, failed.LessonCompleted)
	assert.Nil(t, failed.Certificate)

	entry, err := progress.LessonProgress(ctx, testLearner, quizLesson)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", string(entry.State))

	passed, err := quiz.Submit(ctx, testLearner, quizLesson, QuizSubmission{Answers: answers(qs[0].ID, "Hello", qs[1].ID, "5")})
	require.NoError(t, err)
	assert.Equal(t, 100, passed.Score)
	assert.Equal(t, 2, passed.CorrectAnswers)
	assert.Equal(t, 2, passed.TotalQuestions)
	assert.Equal(t, 2, passed.TotalAttempts)
	assert.Equal(t, 100, passed.BestScore)
	assert.True(t, passed.LessonCompleted)
	require.NotNil(t, passed.Certificate)
	assert.True(t, passed.Certificate.Issued)

	status, err := quiz.Status(ctx, testLearner, quizLesson)
	require.NoError(t, err)
	assert.True(t, status.HasPassed)
	assert.False(t, status.CanAttempt)
}

func TestQuizService_SubmitAfterPass(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	qs := store.addLesson(testCourse, quizLesson, "Hello")
	quiz := NewQuizService(newTestAttemptService(store, nil), newTestProgressService(store))

	_, err := quiz.Submit(ctx, testLearner, quizLesson, QuizSubmission{Answers: answers(qs[0].ID, "Hello")})
	require.NoError(t, err)

	_, err = quiz.Submit(ctx, testLearner, quizLesson, QuizSubmission{Answers: answers(qs[0].ID, "Hello")})
	var passedErr *AlreadyPassedError
	require.ErrorAs(t, err, &passedErr)
	assert.Equal(t, 100, passedErr.BestScore)
}

// failOnceCompletion 第一次完成课时时返回存储错误
type failOnceCompletion struct {
	*memStore
	failed bool
}

func (f *failOnceCompletion) MarkLessonCompleted(ctx context.Context, learnerID, lessonID uint, at time.Time) (bool, error) {
	if !f.failed {
		f.failed = true
		return false, errors.New("deadlock detected")
	}
	return f.memStore.MarkLessonCompleted(ctx, learnerID, lessonID, at)
}

func TestQuizService_RetryAfterCompletionFailureCompletesLesson(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	qs := store.addLesson(testCourse, quizLesson, "Hello", "5")

	progress := newTestProgressService(store)
	progress.Progress = &failOnceCompletion{memStore: store}
	quiz := NewQuizService(newTestAttemptService(store, nil), progress)

	pass := QuizSubmission{Answers: answers(qs[0].ID, "Hello", qs[1].ID, "5")}

	_, err := quiz.Submit(ctx, testLearner, quizLesson, pass)
	require.Error(t, err)

	entry, err := progress.LessonProgress(ctx, testLearner, quizLesson)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", string(entry.State))

	_, err = quiz.Submit(ctx, testLearner, quizLesson, pass)
	var passedErr *AlreadyPassedError
	require.ErrorAs(t, err, &passedErr)
	assert.Equal(t, 100, passedErr.BestScore)
	assert.Equal(t, 2, store.attemptCount())

	entry, err = progress.LessonProgress(ctx, testLearner, quizLesson)
	require.NoError(t, err)
	assert.Equal(t, "completed", string(entry.State))

	certs, err := progress.ListCertificates(ctx, testLearner)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, testCourse, certs[0].CourseID)
}

func TestQuizService_PartialSubmissionDoesNotComplete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	qs := store.addLesson(testCourse, quizLesson, "a", "b", "c", "d", "e")
	progress := newTestProgressService(store)
	quiz := NewQuizService(newTestAttemptService(store, nil), progress)

	res, err := quiz.Submit(ctx, testLearner, quizLesson, QuizSubmission{
		Answers: answers(qs[0].ID, "a", qs[1].ID, "b", qs[2].ID, "c", qs[3].ID, "d"),
	})
	require.NoError(t, err)
	assert.Equal(t, 80, res.Score)
	assert.False(t, res.Passed)
	assert.False(t, res.LessonCompleted)
	assert.Zero(t, res.TotalAttempts)

	entry, err := progress.LessonProgress(ctx, testLearner, quizLesson)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", string(entry.State))
}
