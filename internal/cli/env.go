package cli

import (
	"fmt"
	"time"

	"github.com/asakatsu/internal/clock"
	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/service"
	"gorm.io/gorm"
)

// env 是一次命令执行期间使用的数据库与服务
type env struct {
	gdb     *gorm.DB
	loc     *time.Location
	clock   clock.Clock
	wakeups *service.WakeupStore
	titles  *service.TitleService
	engine  *service.TitleEngine
}

func openEnv(opts *RootOptions) (*env, error) {
	loc, err := clock.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	gdb, err := db.Open(opts.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", opts.DatabasePath, err)
	}

	wakeups := service.NewWakeupStore(gdb, loc)
	titles := service.NewTitleService(gdb)
	return &env{
		gdb:     gdb,
		loc:     loc,
		clock:   clock.NewSystem(loc),
		wakeups: wakeups,
		titles:  titles,
		engine:  service.NewTitleEngine(wakeups, titles),
	}, nil
}

func (e *env) Close() error {
	sqlDB, err := e.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// resolveDay 校验 --day，留空时取配置时区下的今天
func (e *env) resolveDay(day string) (string, error) {
	if day == "" {
		return service.FormatDay(e.clock.Now()), nil
	}
	if _, err := service.ParseDay(day); err != nil {
		return "", err
	}
	return day, nil
}
