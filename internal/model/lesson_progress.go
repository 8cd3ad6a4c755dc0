package model

import "time"

type LessonState string

const (
	LessonNotStarted LessonState = "not_started"
	LessonInProgress LessonState = "in_progress"
	LessonCompleted  LessonState = "completed"
)

// LessonProgress 每个 (学习者, 课) 一条，首次交互时创建
type LessonProgress struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID   uint       `gorm:"uniqueIndex:idx_progress_learner_lesson;not null" json:"learnerId"`
	LessonID    uint       `gorm:"uniqueIndex:idx_progress_learner_lesson;not null" json:"lessonId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	TimeSpent   int        `gorm:"default:0" json:"timeSpent"` // 秒
	StartedAt   time.Time  `json:"startedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// State 没有记录即视为 not_started
func (p *LessonProgress) State() LessonState {
	switch {
	case p == nil:
		return LessonNotStarted
	case p.Completed:
		return LessonCompleted
	default:
		return LessonInProgress
	}
}
