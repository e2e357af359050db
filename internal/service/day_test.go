package service

import (
	"errors"
	"testing"
	"time"
)

func TestShiftDay(t *testing.T) {
	got, err := ShiftDay("2024-03-01", -1)
	if err != nil {
		t.Fatalf("ShiftDay returned error: %v", err)
	}
	if got != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", got)
	}

	if _, err := ShiftDay("2024/03/01", 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSplitTimestamp(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	day, tod := SplitTimestamp(time.Date(2024, 12, 31, 15, 0, 1, 0, time.UTC), loc)
	if day != "2025-01-01" || tod != "00:00:01" {
		t.Fatalf("unexpected split: %s %s", day, tod)
	}
}

func TestMinuteOfDayIgnoresSeconds(t *testing.T) {
	m, err := minuteOfDay("07:45:59")
	if err != nil {
		t.Fatalf("minuteOfDay returned error: %v", err)
	}
	if m != 7*60+45 {
		t.Fatalf("expected 465, got %d", m)
	}
	if _, err := minuteOfDay("7:45"); err == nil {
		t.Fatal("expected error for malformed time")
	}
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  山田 太郎 ")
	if err != nil {
		t.Fatalf("NormalizeName returned error: %v", err)
	}
	// 名字按原样保存，不做大小写等规范化
	if name != "山田 太郎" {
		t.Fatalf("unexpected name: %q", name)
	}

	if _, err := NormalizeName("tab\tname"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for control characters, got %v", err)
	}
}
