package db

import "time"

// TitleDefinition 描述一个可获得的称号。
// Code 为稳定标识，重新播种时只更新名称、说明、隐藏标记与排序。
type TitleDefinition struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:64;uniqueIndex;not null"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Hidden      bool   `gorm:"not null"`
	Sort        int    `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定自定义表名。
func (TitleDefinition) TableName() string {
	return "title_definitions"
}

// TitleAward 记录用户首次获得称号的日期。
// UserName + TitleCode 采用唯一索引，重复授予由数据库吸收。
type TitleAward struct {
	ID          uint   `gorm:"primaryKey"`
	UserName    string `gorm:"size:64;not null;uniqueIndex:idx_title_award_unique,priority:1"`
	TitleCode   string `gorm:"size:64;not null;uniqueIndex:idx_title_award_unique,priority:2;index:idx_title_award_code"`
	AcquiredDay string `gorm:"size:10;not null"`
	CreatedAt   time.Time
}

// TableName 指定自定义表名。
func (TitleAward) TableName() string {
	return "title_awards"
}
