package db

import (
	"path/filepath"
	"testing"
)

func TestInitCreatesParentDirAndTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wakeups.db")

	if err := Init(path); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
		DB = nil
	})

	migrator := DB.Migrator()
	for _, table := range []string{"wakeup_events", "title_definitions", "title_awards"} {
		if !migrator.HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	if !migrator.HasIndex(&TitleAward{}, "idx_title_award_unique") {
		t.Fatal("expected unique index on title awards")
	}
}

func TestCloseWithoutInit(t *testing.T) {
	DB = nil
	if err := Close(); err != nil {
		t.Fatalf("Close on nil DB returned error: %v", err)
	}
}

func TestOpenLeavesGlobalUntouched(t *testing.T) {
	DB = nil
	gdb, err := Open(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if DB != nil {
		t.Fatal("expected global DB to stay nil")
	}
	if !gdb.Migrator().HasTable("wakeup_events") {
		t.Fatal("expected wakeup_events table")
	}
}
