package service

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable 表示数据库连接或查询失败，请求整体失败
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidInput 表示用户名、时间或答案格式不合法，在进入判定引擎前拒绝
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration 表示称号目录种子数据有误，启动时应直接退出
	ErrConfiguration = errors.New("configuration error")
	// ErrWrongAnswer 表示当日测验回答错误，不记录起床
	ErrWrongAnswer = errors.New("wrong answer")
	// ErrTitleNotFound 在称号代码不存在时返回
	ErrTitleNotFound = errors.New("title not found")
)

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
