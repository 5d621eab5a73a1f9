package service

import (
	"mindconnect_backend/internal/model"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWithinAvailability(t *testing.T) {
	slots := []model.PsychologistAvailability{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "13:00"}, // Monday morning
		{DayOfWeek: 3, StartTime: "14:00", EndTime: "18:00"}, // Wednesday afternoon
	}

	// 2026-08-31 is a Monday.
	monday := func(hour, min int) time.Time {
		return time.Date(2026, 8, 31, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		start    time.Time
		duration int
		want     bool
	}{
		{"inside the slot", monday(10, 0), 50, true},
		{"exactly fills the slot", monday(9, 0), 240, true},
		{"starts before opening", monday(8, 30), 50, false},
		{"runs past closing", monday(12, 30), 50, false},
		{"wrong day", monday(10, 0).AddDate(0, 0, 1), 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withinAvailability(slots, tt.start, tt.duration); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithinAvailabilitySkipsMalformedSlot(t *testing.T) {
	slots := []model.PsychologistAvailability{
		{DayOfWeek: 1, StartTime: "bad", EndTime: "13:00"},
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "13:00"},
	}
	start := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if !withinAvailability(slots, start, 50) {
		t.Error("a malformed slot must not hide a valid one")
	}
}
