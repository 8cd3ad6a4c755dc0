package util

// gin 上下文键
const (
	ContextLearnerKey = "learnerId"
)
