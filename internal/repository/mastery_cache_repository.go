package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"lingo_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

// MasteryCacheRepository 缓存 (学习者, 课) 的掌握状态，Redis 未启用时全部空操作
type MasteryCacheRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewMasteryCacheRepository(rdb *redis.Client, ttl time.Duration) *MasteryCacheRepository {
	return &MasteryCacheRepository{Redis: rdb, TTL: ttl}
}

func masteryKey(learnerID, lessonID uint) string {
	return fmt.Sprintf("quiz:mastery:%d:%d", learnerID, lessonID)
}

func (r *MasteryCacheRepository) Get(ctx context.Context, learnerID, lessonID uint) (*model.MasteryStatus, bool) {
	if r == nil || r.Redis == nil {
		return nil, false
	}

	val, err := r.Redis.Get(ctx, masteryKey(learnerID, lessonID)).Result()
	if err != nil {
		return nil, false
	}

	var status model.MasteryStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, false
	}
	return &status, true
}

func (r *MasteryCacheRepository) Set(ctx context.Context, learnerID, lessonID uint, status *model.MasteryStatus) error {
	if r == nil || r.Redis == nil || r.TTL <= 0 {
		return nil
	}

	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, masteryKey(learnerID, lessonID), data, r.TTL).Err()
}

func (r *MasteryCacheRepository) Invalidate(ctx context.Context, learnerID, lessonID uint) error {
	if r == nil || r.Redis == nil {
		return nil
	}
	return r.Redis.Del(ctx, masteryKey(learnerID, lessonID)).Err()
}
