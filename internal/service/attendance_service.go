package service

import (
	"context"
	"errors"
	"time"

	"github.com/asakatsu/internal/logger"
	"github.com/asakatsu/internal/metrics"
)

// LoginResult 是一次答题登录的结果
type LoginResult struct {
	Name      string         `json:"name"`
	Day       string         `json:"day"`
	TimeOfDay string         `json:"time_of_day"`
	Streak    int            `json:"streak"`
	Granted   []GrantedTitle `json:"granted_titles"`
}

// AttendanceService 串联答题、记录与称号判定，是表现层唯一的写入入口
type AttendanceService struct {
	store   *WakeupStore
	engine  *TitleEngine
	quiz    *QuizService
	metrics *metrics.Manager
}

// NewAttendanceService 构造 AttendanceService
func NewAttendanceService(store *WakeupStore, engine *TitleEngine, quiz *QuizService) *AttendanceService {
	if quiz == nil {
		quiz = NewQuizService(nil)
	}
	return &AttendanceService{store: store, engine: engine, quiz: quiz}
}

// WithMetrics 设置登录与答错计数
func (s *AttendanceService) WithMetrics(m *metrics.Manager) *AttendanceService {
	s.metrics = m
	return s
}

// Today 返回 now 在配置时区下的日历日
func (s *AttendanceService) Today(now time.Time) string {
	day, _ := SplitTimestamp(now, s.store.Location())
	return day
}

// QuizFor 返回 now 所在日的题目
func (s *AttendanceService) QuizFor(now time.Time) Quiz {
	return s.quiz.ForDay(now.In(s.store.Location()))
}

// SubmitAnswer 校验名字与答案，答对后记录起床并执行判定
func (s *AttendanceService) SubmitAnswer(ctx context.Context, name, choice string, now time.Time) (LoginResult, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return LoginResult{}, err
	}

	quiz := s.QuizFor(now)
	idx, err := s.quiz.ParseChoice(quiz, choice)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.quiz.Check(quiz, idx); err != nil {
		if errors.Is(err, ErrWrongAnswer) {
			s.metrics.RecordWrongAnswer()
		}
		return LoginResult{Name: normalized}, err
	}

	return s.RecordAndEvaluate(ctx, normalized, now)
}

// RecordAndEvaluate 记录一次起床并以当天为基准执行称号判定
func (s *AttendanceService) RecordAndEvaluate(ctx context.Context, user string, now time.Time) (LoginResult, error) {
	event, err := s.store.RecordEvent(ctx, user, now)
	if err != nil {
		return LoginResult{}, err
	}
	s.metrics.RecordLogin()

	result := LoginResult{
		Name:      event.Name,
		Day:       event.Day,
		TimeOfDay: event.TimeOfDay,
	}

	evaluation, err := s.engine.Evaluate(ctx, event.Name, event.Day)
	if err != nil {
		logger.Get().Error(ctx, "title evaluation failed",
			logger.String("user", event.Name),
			logger.String("day", event.Day),
			logger.Error(err),
		)
		return result, err
	}

	result.Streak = evaluation.Streak
	result.Granted = evaluation.Granted
	return result, nil
}
