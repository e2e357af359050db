package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/logger"
	"github.com/asakatsu/internal/metrics"
)

// AwardLedger 是引擎写入称号所需的最小接口
type AwardLedger interface {
	GrantIfAbsent(ctx context.Context, user, code, day string) (bool, error)
	Definition(ctx context.Context, code string) (*db.TitleDefinition, error)
}

// GrantedTitle 是本次判定新授予的称号
type GrantedTitle struct {
	User        string `json:"user"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
	AcquiredDay string `json:"acquired_day"`
}

// EvaluationResult 汇总一次判定
type EvaluationResult struct {
	User    string         `json:"user"`
	Day     string         `json:"day"`
	Streak  int            `json:"streak"`
	Granted []GrantedTitle `json:"granted"`
}

// GrantedTo 返回授予给指定用户的称号
func (r EvaluationResult) GrantedTo(user string) []GrantedTitle {
	var out []GrantedTitle
	for _, g := range r.Granted {
		if g.User == user {
			out = append(out, g)
		}
	}
	return out
}

// TitleEngine 按顺序执行规则并统一授予称号。
// 规则之间互不可见，重复执行是安全的。
type TitleEngine struct {
	events  EventReader
	ledger  AwardLedger
	rules   []Rule
	metrics *metrics.Manager
	log     logger.Logger
}

// NewTitleEngine 构造引擎，rules 为空时使用 DefaultRules
func NewTitleEngine(events EventReader, ledger AwardLedger, rules ...Rule) *TitleEngine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &TitleEngine{
		events: events,
		ledger: ledger,
		rules:  rules,
		log:    logger.Named("title_engine"),
	}
}

// WithMetrics 设置判定耗时与授予计数
func (e *TitleEngine) WithMetrics(m *metrics.Manager) *TitleEngine {
	e.metrics = m
	return e
}

// Rules 返回当前规则的名字，按执行顺序
func (e *TitleEngine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		names = append(names, rule.Name)
	}
	return names
}

// Evaluate 以 today 为基准对 user 执行全部规则。
// 数据不足不算错误，只是不授予；存储失败时立即返回。
func (e *TitleEngine) Evaluate(ctx context.Context, user, today string) (EvaluationResult, error) {
	name, err := NormalizeName(user)
	if err != nil {
		return EvaluationResult{}, err
	}
	if _, err := ParseDay(today); err != nil {
		return EvaluationResult{}, err
	}

	start := time.Now()
	defer func() { e.metrics.ObserveEvaluation(time.Since(start)) }()

	result := EvaluationResult{User: name, Day: today}

	days, err := e.events.LoginDays(ctx, name, today, streakWindow)
	if err != nil {
		return result, fmt.Errorf("evaluate streak: %w", err)
	}
	result.Streak = CurrentStreak(days)

	for _, rule := range e.rules {
		candidates, err := rule.Check(ctx, e.events, name, today)
		if err != nil {
			e.log.Error(ctx, "title rule failed",
				logger.String("rule", rule.Name),
				logger.String("user", name),
				logger.Error(err),
			)
			return result, fmt.Errorf("rule %s: %w", rule.Name, err)
		}

		for _, cand := range candidates {
			granted, err := e.grant(ctx, cand, today)
			if err != nil {
				return result, fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			if granted != nil {
				result.Granted = append(result.Granted, *granted)
			}
		}
	}

	return result, nil
}

func (e *TitleEngine) grant(ctx context.Context, cand Candidate, today string) (*GrantedTitle, error) {
	ok, err := e.ledger.GrantIfAbsent(ctx, cand.User, cand.Code, today)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	title := &GrantedTitle{
		User:        cand.User,
		Code:        cand.Code,
		Name:        cand.Code,
		AcquiredDay: today,
	}
	def, err := e.ledger.Definition(ctx, cand.Code)
	switch {
	case errors.Is(err, ErrTitleNotFound):
		e.log.Warn(ctx, "granted title has no definition", logger.String("code", cand.Code))
	case err != nil:
		return nil, err
	default:
		title.Name = def.Name
		title.Description = def.Description
		title.Hidden = def.Hidden
	}

	e.metrics.RecordTitleGranted(cand.Code)
	e.log.Info(ctx, "title granted",
		logger.String("user", cand.User),
		logger.String("code", cand.Code),
		logger.String("day", today),
	)
	return title, nil
}
