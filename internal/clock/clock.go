// Package clock 提供服务所在时区的当前时间。
// handler 每个请求只取一次时间并显式向下传递，handler 以下的层不调用 time.Now。
package clock

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone 默认使用日本时间
const DefaultTimezone = "Asia/Tokyo"

// Clock 返回配置时区下的当前时间
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// System 读取进程时钟
type System struct {
	loc *time.Location
}

// NewSystem 创建 loc 时区的系统时钟，loc 为 nil 时使用 UTC
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

func (s *System) Now() time.Time           { return time.Now().In(s.loc) }
func (s *System) Location() *time.Location { return s.loc }

// Fixed 是可手动设置的时钟，用于测试与重新评估过去的日期
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed 创建停在 now 的时钟
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Location()
}

// Set 把时钟设为 now
func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance 把时钟向前拨 d
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// LoadLocation 解析 IANA 时区名，空字符串时使用 DefaultTimezone
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
