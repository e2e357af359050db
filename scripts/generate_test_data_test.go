package main

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/asakatsu/internal/clock"
	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDemoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:demo-seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestGenerateDemoDataGrantsEveryRule(t *testing.T) {
	gdb := setupDemoTestDB(t)
	loc, err := clock.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	end := time.Date(2024, 3, 7, 12, 0, 0, 0, loc)

	granted, err := generateDemoData(t.Context(), gdb, loc, end, demoDays)
	if err != nil {
		t.Fatalf("generateDemoData returned error: %v", err)
	}

	want := map[string][]string{
		"たろう":   {service.TitleStreak3, service.TitleRegular3, service.TitleStreak7},
		"はなこ":   {service.TitleStreak3, service.TitleRegular3, service.TitleStreak7},
		"よる":    {service.TitleStreak3, service.TitleNoon3, service.TitleStreak7},
		"ねむれない": {service.TitleStreak3, service.TitleNoSleep3, service.TitleEarlyKing3, service.TitleStreak7},
	}
	for name, codes := range want {
		for _, code := range codes {
			if !slices.Contains(granted[name], code) {
				t.Fatalf("expected %s to earn %s, got %v", name, code, granted[name])
			}
		}
	}

	var count int64
	gdb.Model(&db.WakeupEvent{}).Count(&count)
	if count != int64(demoDays*len(demoUsers)) {
		t.Fatalf("expected %d wake-up events, got %d", demoDays*len(demoUsers), count)
	}

	again, err := generateDemoData(t.Context(), gdb, loc, end, demoDays)
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if again != nil {
		t.Fatalf("expected second run to skip, got %v", again)
	}
}
