package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/asakatsu/internal/clock"
	"github.com/asakatsu/internal/config"
	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/service"
	"gorm.io/gorm"
)

const demoDays = 7

// demoUser 描述一位演示用户每天的起床时间
type demoUser struct {
	name string
	at   func(i int) (hour, minute int)
}

// 四种作息，分别覆盖连续登录、规律作息、夜型与失眠、最早起床
var demoUsers = []demoUser{
	{name: "たろう", at: func(i int) (int, int) { return 5, 10 + i*3%10 }},
	{name: "はなこ", at: func(i int) (int, int) { return 6, 30 + i*5%20 }},
	{name: "よる", at: func(i int) (int, int) { return 13 + i%3, i * 7 % 60 }},
	{name: "ねむれない", at: func(i int) (int, int) { return 3, i * 11 % 50 }},
}

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	defer db.Close()

	loc, err := clock.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("时区加载失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	ctx := context.Background()
	granted, err := generateDemoData(ctx, db.DB, loc, time.Now().In(loc), demoDays)
	if err != nil {
		log.Fatal("测试数据生成失败:", err)
	}
	if granted == nil {
		fmt.Println("起床记录已存在，跳过创建")
		return
	}

	fmt.Println("测试数据生成完成！")
	for _, u := range demoUsers {
		fmt.Printf("%s: %v\n", u.name, granted[u.name])
	}
}

// generateDemoData 写入以 end 为最后一天、共 days 天的演示起床记录，
// 并按天运行称号判定。已有记录时不做任何修改并返回 nil。
func generateDemoData(ctx context.Context, gdb *gorm.DB, loc *time.Location, end time.Time, days int) (map[string][]string, error) {
	var count int64
	if err := gdb.WithContext(ctx).Model(&db.WakeupEvent{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	catalog, err := service.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	titles := service.NewTitleService(gdb)
	if err := titles.Seed(ctx, catalog); err != nil {
		return nil, err
	}

	wakeups := service.NewWakeupStore(gdb, loc)
	engine := service.NewTitleEngine(wakeups, titles)
	granted := make(map[string][]string, len(demoUsers))

	first := end.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i)
		for _, u := range demoUsers {
			hour, minute := u.at(i)
			ts := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
			if _, err := wakeups.RecordEvent(ctx, u.name, ts); err != nil {
				return nil, fmt.Errorf("record %s: %w", u.name, err)
			}
		}
		// 当天全员记录完后再判定，最早起床王需要看到完整的一天
		for _, u := range demoUsers {
			result, err := engine.Evaluate(ctx, u.name, service.FormatDay(date))
			if err != nil {
				return nil, fmt.Errorf("evaluate %s: %w", u.name, err)
			}
			for _, g := range result.Granted {
				granted[g.User] = append(granted[g.User], g.Code)
			}
		}
	}
	return granted, nil
}
