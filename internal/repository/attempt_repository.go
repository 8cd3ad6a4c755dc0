package repository

import (
	"context"
	"lingo_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// ListAttempts 按提交时间排序
func (r *AttemptRepository) ListAttempts(ctx context.Context, learnerID, lessonID uint) ([]model.QuestionAttempt, error) {
	var attempts []model.QuestionAttempt
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND lesson_id = ?", learnerID, lessonID).
		Order("submitted_at asc, id asc").
		Find(&attempts).Error
	return attempts, err
}

// InsertAttempts 一次提交的所有作答在同一事务内写入，失败则全部回滚
func (r *AttemptRepository) InsertAttempts(ctx context.Context, attempts []model.QuestionAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&attempts).Error
	})
}
