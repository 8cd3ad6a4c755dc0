package model

import "time"

const (
	// PassThreshold 及格线（百分制）
	PassThreshold = 80
	// BucketWidth 旧系统按 5 分钟时间桶归并作答
	BucketWidth = 5 * time.Minute
)

// AttemptSession 由若干 QuestionAttempt 重建出的一次完整作答，不落库
type AttemptSession struct {
	Key            string            `json:"key"`
	Attempts       []QuestionAttempt `json:"-"`
	TotalQuestions int               `json:"totalQuestions"`
	CorrectCount   int               `json:"correctCount"`
	ScorePercent   int               `json:"scorePercent"`
	Passed         bool              `json:"passed"`
	SubmittedAt    time.Time         `json:"submittedAt"`
}

// MasteryStatus 某学习者在某课上的掌握情况，按需计算
type MasteryStatus struct {
	HasQuestions         bool `json:"hasQuizzes"`
	BestScore            int  `json:"bestScore"`
	HasPassed            bool `json:"hasPassed"`
	CanAttempt           bool `json:"canTakeQuiz"`
	CompleteAttemptCount int  `json:"totalAttempts"`
}

// CertificateDecision 课程完成检查的结果
type CertificateDecision struct {
	CourseID      uint `json:"courseId"`
	CourseDone    bool `json:"courseCompleted"`
	Issued        bool `json:"issued"`
	AlreadyIssued bool `json:"alreadyIssued"`
	Score         int  `json:"score,omitempty"`
}

// CourseProgress 仪表盘用的课程进度汇总
type CourseProgress struct {
	CourseID         uint          `json:"courseId"`
	TotalLessons     int           `json:"totalLessons"`
	CompletedLessons int           `json:"completedLessons"`
	Percent          int           `json:"percent"`
	Lessons          []LessonEntry `json:"lessons"`
	Certificate      *Certificate  `json:"certificate,omitempty"`
}

type LessonEntry struct {
	LessonID    uint        `json:"lessonId"`
	State       LessonState `json:"state"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	TimeSpent   int         `json:"timeSpent"`
}
