package util

import "errors"

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrLessonHasQuiz     = errors.New("lesson has a quiz, pass it to complete the lesson")
	ErrInvalidLearner    = errors.New("invalid learner id")
	ErrCertificateExists = errors.New("certificate already issued")
)
