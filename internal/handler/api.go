package handler

import (
	"context"
	"time"

	"github.com/asakatsu/internal/clock"
	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/metrics"
	"github.com/asakatsu/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DefaultHistoryDays 是 /history 未指定 days 时的天数
const DefaultHistoryDays = 7

// MaxHistoryDays 是 /history 允许查询的最大天数
const MaxHistoryDays = 31

// titleReader 是称号页面与接口使用的只读查询
type titleReader interface {
	VisibleCatalog(ctx context.Context) ([]service.CatalogEntry, error)
	Definition(ctx context.Context, code string) (*db.TitleDefinition, error)
	Holders(ctx context.Context, code string) ([]service.TitleHolder, error)
	TitlesForUser(ctx context.Context, user string) ([]service.UserTitle, error)
}

// Options 调整 API 的可选行为
type Options struct {
	HistoryDays int
	Metrics     *metrics.Manager
	Rules       []service.Rule
}

// API 汇集 HTTP handler 共用的依赖
type API struct {
	clock       clock.Clock
	wakeups     *service.WakeupStore
	titles      *service.TitleService
	titleReads  titleReader
	attendance  *service.AttendanceService
	historyDays int
}

// NewAPI 创建共享服务的 handler 集合
func NewAPI(gdb *gorm.DB, clk clock.Clock, opts Options) *API {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	historyDays := opts.HistoryDays
	if historyDays <= 0 || historyDays > MaxHistoryDays {
		historyDays = DefaultHistoryDays
	}

	wakeups := service.NewWakeupStore(gdb, clk.Location()).WithMetrics(opts.Metrics)
	titles := service.NewTitleService(gdb).WithMetrics(opts.Metrics)
	engine := service.NewTitleEngine(wakeups, titles, opts.Rules...).WithMetrics(opts.Metrics)

	return &API{
		clock:       clk,
		wakeups:     wakeups,
		titles:      titles,
		titleReads:  titles,
		attendance:  service.NewAttendanceService(wakeups, engine, nil).WithMetrics(opts.Metrics),
		historyDays: historyDays,
	}
}

// Titles 返回称号服务，启动时用于播种目录
func (a *API) Titles() *service.TitleService {
	return a.titles
}

func (a *API) now() time.Time {
	return a.clock.Now()
}

func (a *API) today() string {
	return a.attendance.Today(a.now())
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	pref := a.requestLocale(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["lang"]; !exists {
		payload["lang"] = pref.Language
	}
	if _, exists := payload["htmlLang"]; !exists {
		payload["htmlLang"] = pref.HTMLLang
	}
	if _, exists := payload["langSwitch"]; !exists {
		payload["langSwitch"] = buildLanguageSwitch(c, pref.Language)
	}
	if _, exists := payload["requestID"]; !exists {
		payload["requestID"] = requestID(c)
	}

	c.HTML(status, template, payload)
}
