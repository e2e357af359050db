package service

import (
	"context"
	"errors"
	"strings"

	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleService 管理称号目录与授予记录
type TitleService struct {
	db      *gorm.DB
	metrics *metrics.Manager
}

// TitleHolder 是某称号的一位持有者
type TitleHolder struct {
	UserName    string `json:"name"`
	AcquiredDay string `json:"acquired_day"`
}

// UserTitle 是用户已获得的称号及其定义
type UserTitle struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
	AcquiredDay string `json:"acquired_day"`
}

// CatalogEntry 是对外展示的称号及持有人数
type CatalogEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
	Sort        int    `json:"sort"`
	Holders     int64  `json:"holders"`
}

// NewTitleService 构造 TitleService
func NewTitleService(gdb *gorm.DB) *TitleService {
	return &TitleService{db: gdb}
}

// WithMetrics 设置存储失败时上报的指标
func (s *TitleService) WithMetrics(m *metrics.Manager) *TitleService {
	s.metrics = m
	return s
}

func (s *TitleService) fail(op string, err error) error {
	s.metrics.RecordStorageError(op)
	return storageError(op, err)
}

// Seed 按 code 幂等写入称号目录，已存在的条目更新名称、说明、隐藏标记与排序
func (s *TitleService) Seed(ctx context.Context, seeds []TitleSeed) error {
	if err := ValidateCatalog(seeds); err != nil {
		return err
	}

	definitions := make([]db.TitleDefinition, 0, len(seeds))
	for _, seed := range seeds {
		definitions = append(definitions, db.TitleDefinition{
			Code:        strings.TrimSpace(seed.Code),
			Name:        strings.TrimSpace(seed.Name),
			Description: strings.TrimSpace(seed.Description),
			Hidden:      seed.Hidden,
			Sort:        seed.Sort,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range definitions {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "hidden", "sort", "updated_at"}),
			}).Create(&definitions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.fail("seed_titles", err)
	}
	return nil
}

// GrantIfAbsent 授予称号。已持有时什么也不做，granted 为 false。
// 并发重复授予由 (user_name, title_code) 唯一索引吸收，不视为错误。
func (s *TitleService) GrantIfAbsent(ctx context.Context, user, code, day string) (bool, error) {
	award := db.TitleAward{
		UserName:    user,
		TitleCode:   code,
		AcquiredDay: day,
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_name"}, {Name: "title_code"}},
		DoNothing: true,
	}).Create(&award)
	if result.Error != nil {
		return false, s.fail("grant_title", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Definition 根据 code 获取称号定义
func (s *TitleService) Definition(ctx context.Context, code string) (*db.TitleDefinition, error) {
	var def db.TitleDefinition
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, s.fail("title_definition", err)
	}
	return &def, nil
}

// Holders 返回称号的持有者，按获得日期、名字升序
func (s *TitleService) Holders(ctx context.Context, code string) ([]TitleHolder, error) {
	if _, err := s.Definition(ctx, code); err != nil {
		return nil, err
	}

	var holders []TitleHolder
	if err := s.db.WithContext(ctx).
		Model(&db.TitleAward{}).
		Select("user_name, acquired_day").
		Where("title_code = ?", code).
		Order("acquired_day ASC, user_name ASC").
		Scan(&holders).Error; err != nil {
		return nil, s.fail("title_holders", err)
	}
	return holders, nil
}

// TitlesForUser 返回用户持有的称号，最近获得的在前。名字按写入时的规则校验。
func (s *TitleService) TitlesForUser(ctx context.Context, user string) ([]UserTitle, error) {
	user, err := NormalizeName(user)
	if err != nil {
		return nil, err
	}

	var titles []UserTitle
	if err := s.db.WithContext(ctx).
		Table("title_awards AS a").
		Select("d.code AS code, d.name AS name, d.description AS description, d.hidden AS hidden, a.acquired_day AS acquired_day").
		Joins("JOIN title_definitions AS d ON d.code = a.title_code").
		Where("a.user_name = ?", user).
		Order("a.acquired_day DESC, d.sort ASC").
		Scan(&titles).Error; err != nil {
		return nil, s.fail("user_titles", err)
	}
	return titles, nil
}

// VisibleCatalog 返回称号目录及持有人数。隐藏称号在无人持有前不出现。
func (s *TitleService) VisibleCatalog(ctx context.Context) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	if err := s.db.WithContext(ctx).
		Table("title_definitions AS d").
		Select("d.code AS code, d.name AS name, d.description AS description, d.hidden AS hidden, d.sort AS sort, COUNT(a.id) AS holders").
		Joins("LEFT JOIN title_awards AS a ON a.title_code = d.code").
		Group("d.id").
		Order("d.sort ASC, d.code ASC").
		Scan(&entries).Error; err != nil {
		return nil, s.fail("visible_catalog", err)
	}

	visible := entries[:0]
	for _, entry := range entries {
		if entry.Hidden && entry.Holders == 0 {
			continue
		}
		visible = append(visible, entry)
	}
	return visible, nil
}
