package model

import "time"

// QuestionAttempt 单题作答记录，只追加不修改
type QuestionAttempt struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID         uint      `gorm:"index:idx_attempt_learner_lesson;not null" json:"learnerId"`
	LessonID          uint      `gorm:"index:idx_attempt_learner_lesson;not null" json:"lessonId"`
	QuestionID        uint      `gorm:"index;not null" json:"questionId"`
	SubmittedAnswer   string    `gorm:"type:text" json:"submittedAnswer"`
	IsCorrect         bool      `gorm:"default:false" json:"isCorrect"`
	SubmittedAt       time.Time `gorm:"index;not null" json:"submittedAt"`
	SubmissionBatchID string    `gorm:"size:36;index" json:"submissionBatchId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (QuestionAttempt) TableName() string {
	return "question_attempts"
}
