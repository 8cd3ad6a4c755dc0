package repository

import (
	"context"
	"fmt"
	"lingo_backend/internal/config"
	"lingo_backend/internal/model"
	"lingo_backend/internal/util"
	"lingo_backend/pkg/database"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTime = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seededCourse(t *testing.T, db *gorm.DB) model.Course {
	t.Helper()
	require.NoError(t, database.Seed(db))

	var course model.Course
	require.NoError(t, db.Preload("Lessons").First(&course).Error)
	return course
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	course := seededCourse(t, db)
	repo := NewCourseRepository(db)

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)

	found, err := repo.FindCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, found.Lessons, 3)
	assert.Equal(t, 1, found.Lessons[0].Order)
	assert.Equal(t, 3, found.Lessons[2].Order)

	_, err = repo.FindCourse(ctx, 999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	ids, err := repo.GetCourseLessons(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	first := found.Lessons[0]
	lesson, err := repo.GetLesson(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, lesson.CourseID)

	_, err = repo.GetLesson(ctx, 999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	qs, err := repo.GetLessonQuestions(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Hello", qs[0].CorrectAnswer)
	assert.Equal(t, "5", qs[1].CorrectAnswer)

	none, err := repo.GetLessonQuestions(ctx, found.Lessons[1].ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, database.Seed(db))
	require.NoError(t, database.Seed(db))

	var count int64
	require.NoError(t, db.Model(&model.Course{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAttemptRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAttemptRepository(db)

	later := []model.QuestionAttempt{
		{LearnerID: 1, LessonID: 2, QuestionID: 3, SubmittedAnswer: "a", IsCorrect: true, SubmittedAt: testTime.Add(time.Hour), SubmissionBatchID: "b2"},
	}
	earlier := []model.QuestionAttempt{
		{LearnerID: 1, LessonID: 2, QuestionID: 3, SubmittedAnswer: "x", SubmittedAt: testTime, SubmissionBatchID: "b1"},
		{LearnerID: 1, LessonID: 2, QuestionID: 4, SubmittedAnswer: "y", SubmittedAt: testTime, SubmissionBatchID: "b1"},
	}
	other := []model.QuestionAttempt{
		{LearnerID: 9, LessonID: 2, QuestionID: 3, SubmittedAt: testTime},
	}

	require.NoError(t, repo.InsertAttempts(ctx, later))
	require.NoError(t, repo.InsertAttempts(ctx, earlier))
	require.NoError(t, repo.InsertAttempts(ctx, other))
	require.NoError(t, repo.InsertAttempts(ctx, nil))

	attempts, err := repo.ListAttempts(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, "b1", attempts[0].SubmissionBatchID)
	assert.Equal(t, "b1", attempts[1].SubmissionBatchID)
	assert.Equal(t, "b2", attempts[2].SubmissionBatchID)
	assert.True(t, attempts[2].IsCorrect)

	foreign, err := repo.ListAttempts(ctx, 9, 2)
	require.NoError(t, err)
	assert.Len(t, foreign, 1)
}

func TestProgressRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewProgressRepository(db)

	missing, err := repo.GetLessonProgress(ctx, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	p1, err := repo.EnsureLessonProgress(ctx, 1, 1, testTime)
	require.NoError(t, err)
	p2, err := repo.EnsureLessonProgress(ctx, 1, 1, testTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)
	assert.False(t, p2.Completed)

	changed, err := repo.MarkLessonCompleted(ctx, 1, 1, testTime)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkLessonCompleted(ctx, 1, 1, testTime.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	p, err := repo.GetLessonProgress(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, p.Completed)
	assert.True(t, testTime.Equal(*p.CompletedAt))

	// 没有进度记录时直接完成也会先建记录
	changed, err = repo.MarkLessonCompleted(ctx, 1, 2, testTime)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, repo.AddTimeSpent(ctx, 1, 3, 30, testTime))
	require.NoError(t, repo.AddTimeSpent(ctx, 1, 3, 15, testTime))

	all, err := repo.ListLessonProgress(ctx, 1, []uint{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[2].Completed)
	assert.Equal(t, 45, all[3].TimeSpent)
	_, ok := all[4]
	assert.False(t, ok)

	empty, err := repo.ListLessonProgress(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCertificateRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCertificateRepository(db)

	exists, err := repo.CertificateExists(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, exists)

	missing, err := repo.FindCertificate(ctx, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.CreateCertificate(ctx, &model.Certificate{LearnerID: 1, CourseID: 1, Score: 100, IssuedAt: testTime}))

	err = repo.CreateCertificate(ctx, &model.Certificate{LearnerID: 1, CourseID: 1, Score: 100, IssuedAt: testTime})
	assert.ErrorIs(t, err, util.ErrCertificateExists)

	exists, err = repo.CertificateExists(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.CreateCertificate(ctx, &model.Certificate{LearnerID: 1, CourseID: 2, Score: 100, IssuedAt: testTime.Add(time.Hour)}))

	certs, err := repo.ListCertificates(ctx, 1)
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, uint(2), certs[0].CourseID)
}

func TestMasteryCacheRepository_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := NewMasteryCacheRepository(nil, time.Minute)

	require.NoError(t, repo.Set(ctx, 1, 1, &model.MasteryStatus{HasPassed: true}))
	_, ok := repo.Get(ctx, 1, 1)
	assert.False(t, ok)
	require.NoError(t, repo.Invalidate(ctx, 1, 1))

	var nilRepo *MasteryCacheRepository
	_, ok = nilRepo.Get(ctx, 1, 1)
	assert.False(t, ok)
	assert.Equal(t, "quiz:mastery:3:4", masteryKey(3, 4))
}
