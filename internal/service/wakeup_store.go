package service

import (
	"context"
	"time"

	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/metrics"
	"gorm.io/gorm"
)

// EventReader 是判定规则可见的只读查询集合
type EventReader interface {
	LoginDays(ctx context.Context, user, until string, limit int) ([]string, error)
	FirstWakeupPerDay(ctx context.Context, user, until string, limit int) ([]DailyWakeup, error)
	DailyFastestRiser(ctx context.Context, day string) (Riser, bool, error)
}

// DailyWakeup 是某一天最早的起床时刻
type DailyWakeup struct {
	Day       string `json:"day"`
	TimeOfDay string `json:"time_of_day"`
}

// Riser 是某一天最早起床的人
type Riser struct {
	Name      string `json:"name"`
	Day       string `json:"day"`
	TimeOfDay string `json:"time_of_day"`
}

// DayEvents 汇总某一天的全部起床记录，按时刻升序
type DayEvents struct {
	Day    string
	Events []db.WakeupEvent
}

// WakeupStore 负责 wakeup_events 的写入与查询。
// 记录只追加，不修改也不删除。
type WakeupStore struct {
	db      *gorm.DB
	loc     *time.Location
	metrics *metrics.Manager
}

// NewWakeupStore 构造 WakeupStore，loc 为 nil 时按 UTC 切分日期
func NewWakeupStore(gdb *gorm.DB, loc *time.Location) *WakeupStore {
	if loc == nil {
		loc = time.UTC
	}
	return &WakeupStore{db: gdb, loc: loc}
}

// WithMetrics 设置存储失败时上报的指标
func (s *WakeupStore) WithMetrics(m *metrics.Manager) *WakeupStore {
	s.metrics = m
	return s
}

// Location 返回切分日历日所用的时区
func (s *WakeupStore) Location() *time.Location {
	return s.loc
}

func (s *WakeupStore) fail(op string, err error) error {
	s.metrics.RecordStorageError(op)
	return storageError(op, err)
}

// RecordEvent 追加一条起床记录，日期与时刻按配置时区换算。同一天可多次记录。
func (s *WakeupStore) RecordEvent(ctx context.Context, user string, ts time.Time) (*db.WakeupEvent, error) {
	name, err := NormalizeName(user)
	if err != nil {
		return nil, err
	}
	if ts.IsZero() {
		return nil, invalidInput("timestamp is required")
	}

	day, timeOfDay := SplitTimestamp(ts, s.loc)
	event := db.WakeupEvent{
		Name:      name,
		Day:       day,
		TimeOfDay: timeOfDay,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, s.fail("record_event", err)
	}
	return &event, nil
}

// LoginDays 返回用户有记录的日期，严格降序，最多 limit 个。until 为空表示不设上界。
func (s *WakeupStore) LoginDays(ctx context.Context, user, until string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := s.db.WithContext(ctx).Model(&db.WakeupEvent{}).Where("name = ?", user)
	if until != "" {
		query = query.Where("day <= ?", until)
	}

	var days []string
	if err := query.Group("day").Order("day DESC").Limit(limit).Pluck("day", &days).Error; err != nil {
		return nil, s.fail("login_days", err)
	}
	return days, nil
}

// FirstWakeupPerDay 返回最近 limit 个有记录的日期及当天最早的时刻，按日期降序
func (s *WakeupStore) FirstWakeupPerDay(ctx context.Context, user, until string, limit int) ([]DailyWakeup, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := s.db.WithContext(ctx).Model(&db.WakeupEvent{}).Where("name = ?", user)
	if until != "" {
		query = query.Where("day <= ?", until)
	}

	var rows []DailyWakeup
	if err := query.
		Select("day AS day, MIN(time_of_day) AS time_of_day").
		Group("day").
		Order("day DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, s.fail("first_wakeup_per_day", err)
	}
	return rows, nil
}

// DailyFastestRiser 返回当天最早起床的用户，同一时刻按名字字典序取最小者。
// 当天无人记录时 ok 为 false。
func (s *WakeupStore) DailyFastestRiser(ctx context.Context, day string) (Riser, bool, error) {
	var events []db.WakeupEvent
	result := s.db.WithContext(ctx).
		Where("day = ?", day).
		Order("time_of_day ASC, name ASC").
		Limit(1).
		Find(&events)
	if result.Error != nil {
		return Riser{}, false, s.fail("daily_fastest_riser", result.Error)
	}
	if len(events) == 0 {
		return Riser{}, false, nil
	}

	ev := events[0]
	return Riser{Name: ev.Name, Day: ev.Day, TimeOfDay: ev.TimeOfDay}, true, nil
}

// DayBoard 返回某一天的全部起床记录，按时刻升序
func (s *WakeupStore) DayBoard(ctx context.Context, day string) ([]db.WakeupEvent, error) {
	var events []db.WakeupEvent
	if err := s.db.WithContext(ctx).
		Where("day = ?", day).
		Order("time_of_day ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, s.fail("day_board", err)
	}
	return events, nil
}

// History 返回以 end 结尾、共 days 天的记录，按日期降序分组，只包含有记录的日期。
func (s *WakeupStore) History(ctx context.Context, end string, days int) ([]DayEvents, error) {
	if days <= 0 {
		return nil, invalidInput("days must be positive")
	}
	start, err := ShiftDay(end, -(days - 1))
	if err != nil {
		return nil, err
	}

	var events []db.WakeupEvent
	if err := s.db.WithContext(ctx).
		Where("day BETWEEN ? AND ?", start, end).
		Order("day DESC, time_of_day ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, s.fail("history", err)
	}

	var groups []DayEvents
	for _, ev := range events {
		if n := len(groups); n > 0 && groups[n-1].Day == ev.Day {
			groups[n-1].Events = append(groups[n-1].Events, ev)
			continue
		}
		groups = append(groups, DayEvents{Day: ev.Day, Events: []db.WakeupEvent{ev}})
	}
	return groups, nil
}
