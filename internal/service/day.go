package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// DayLayout 是日历日的存储格式
	DayLayout = "2006-01-02"
	// TimeOfDayLayout 是起床时刻的存储格式，精确到秒
	TimeOfDayLayout = "15:04:05"

	maxNameRunes = 64
)

// SplitTimestamp 将时间戳换算到 loc 后拆成日历日与时刻。
func SplitTimestamp(ts time.Time, loc *time.Location) (day, timeOfDay string) {
	if loc != nil {
		ts = ts.In(loc)
	}
	return ts.Format(DayLayout), ts.Format(TimeOfDayLayout)
}

// FormatDay 返回 t 在其自身时区下的日历日。
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay 解析 2006-01-02 格式的日历日。
func ParseDay(value string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, invalidInput("day %q", value)
	}
	return t, nil
}

// ShiftDay 返回 day 前后偏移 delta 天的日历日。
func ShiftDay(day string, delta int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, delta).Format(DayLayout), nil
}

// isPreviousDay 判断 earlier 是否恰好是 later 的前一天
func isPreviousDay(later, earlier string) bool {
	l, err := time.Parse(DayLayout, later)
	if err != nil {
		return false
	}
	e, err := time.Parse(DayLayout, earlier)
	if err != nil {
		return false
	}
	return l.AddDate(0, 0, -1).Equal(e)
}

// consecutiveDays 要求按降序排列的日期逐日相连
func consecutiveDays(days []string) bool {
	for i := 1; i < len(days); i++ {
		if !isPreviousDay(days[i-1], days[i]) {
			return false
		}
	}
	return true
}

// CurrentStreak 从最近一次登录日向前数连续天数，遇到第一个断档即停止。
// days 必须按降序排列。
func CurrentStreak(days []string) int {
	if len(days) == 0 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !isPreviousDay(days[i-1], days[i]) {
			break
		}
		streak++
	}
	return streak
}

// parseTimeOfDay 解析 15:04:05 格式的时刻，返回时分秒
func parseTimeOfDay(value string) (hour, minute, second int, err error) {
	t, err := time.Parse(TimeOfDayLayout, value)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	return t.Hour(), t.Minute(), t.Second(), nil
}

// minuteOfDay 返回 hour*60+minute，忽略秒，不处理跨午夜
func minuteOfDay(value string) (int, error) {
	hour, minute, _, err := parseTimeOfDay(value)
	if err != nil {
		return 0, err
	}
	return hour*60 + minute, nil
}

// NormalizeName 去掉首尾空白并校验用户名。名字是自由文本，不做其他规范化。
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalidInput("name is required")
	}
	if !utf8.ValidString(name) {
		return "", invalidInput("name is not valid utf-8")
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return "", invalidInput("name exceeds %d characters", maxNameRunes)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", invalidInput("name contains control characters")
		}
	}
	return name, nil
}
