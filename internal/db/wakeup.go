package db

import "time"

// WakeupEvent 记录一次答题成功后的起床登录
// Day 使用 2006-01-02，TimeOfDay 使用 15:04:05，均为配置时区下的墙上时间
// 字符串格式保证按字典序比较即为时间先后，MIN/ORDER BY 可直接在 SQL 中完成
// 同一用户同一天允许多条记录，统计时总取最早一条
type WakeupEvent struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:64;not null;index:idx_wakeup_name_day,priority:1"`
	TimeOfDay string `gorm:"size:8;not null"`
	Day       string `gorm:"size:10;not null;index:idx_wakeup_name_day,priority:2;index:idx_wakeup_day"`
	CreatedAt time.Time
}

// TableName 固定表名，避免复数化差异
func (WakeupEvent) TableName() string {
	return "wakeup_events"
}
