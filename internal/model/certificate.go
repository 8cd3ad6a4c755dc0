package model

import "time"

// Certificate 每个 (学习者, 课程) 至多一张，由唯一索引保证
type Certificate struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID uint      `gorm:"uniqueIndex:idx_certificate_learner_course;not null" json:"learnerId"`
	CourseID  uint      `gorm:"uniqueIndex:idx_certificate_learner_course;not null" json:"courseId"`
	Score     int       `gorm:"not null" json:"score"`
	IssuedAt  time.Time `gorm:"not null" json:"issuedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
