package repository

import (
	"context"
	"errors"
	"lingo_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// GetLessonProgress 没有记录时返回 nil, nil
func (r *ProgressRepository) GetLessonProgress(ctx context.Context, learnerID, lessonID uint) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND lesson_id = ?", learnerID, lessonID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureLessonProgress 懒创建进度记录，并发创建时依赖唯一索引去重
func (r *ProgressRepository) EnsureLessonProgress(ctx context.Context, learnerID, lessonID uint, at time.Time) (*model.LessonProgress, error) {
	p := &model.LessonProgress{
		LearnerID: learnerID,
		LessonID:  lessonID,
		StartedAt: at,
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(p).Error
	if err != nil {
		return nil, err
	}
	return r.GetLessonProgress(ctx, learnerID, lessonID)
}

// MarkLessonCompleted 只在未完成时更新，返回本次是否真的发生了状态变化
func (r *ProgressRepository) MarkLessonCompleted(ctx context.Context, learnerID, lessonID uint, at time.Time) (bool, error) {
	if _, err := r.EnsureLessonProgress(ctx, learnerID, lessonID, at); err != nil {
		return false, err
	}

	res := r.DB.WithContext(ctx).
		Model(&model.LessonProgress{}).
		Where("learner_id = ? AND lesson_id = ? AND completed = ?", learnerID, lessonID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ProgressRepository) AddTimeSpent(ctx context.Context, learnerID, lessonID uint, seconds int, at time.Time) error {
	if _, err := r.EnsureLessonProgress(ctx, learnerID, lessonID, at); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).
		Model(&model.LessonProgress{}).
		Where("learner_id = ? AND lesson_id = ?", learnerID, lessonID).
		Update("time_spent", gorm.Expr("time_spent + ?", seconds)).Error
}

// ListLessonProgress 获取学习者在一组课时上的进度，按课时 ID 索引
func (r *ProgressRepository) ListLessonProgress(ctx context.Context, learnerID uint, lessonIDs []uint) (map[uint]model.LessonProgress, error) {
	result := make(map[uint]model.LessonProgress, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return result, nil
	}

	var rows []model.LessonProgress
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND lesson_id IN ?", learnerID, lessonIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, p := range rows {
		result[p.LessonID] = p
	}
	return result, nil
}
