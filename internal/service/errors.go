package service

import (
	"errors"
	"fmt"
)

// ErrStorage 标记来自存储层的失败，用 errors.Is 判断
var ErrStorage = errors.New("storage failure")

// ValidationError 提交内容不合法，在任何写入之前返回
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s: %s", e.Field, e.Detail)
}

// AlreadyPassedError 已经通过测验后再次提交
type AlreadyPassedError struct {
	BestScore int
}

func (e *AlreadyPassedError) Error() string {
	return fmt.Sprintf("quiz already passed with best score %d", e.BestScore)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
