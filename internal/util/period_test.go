package util

import (
	"testing"
	"time"

	"github.com/moncash/moncash-backend/internal/domain"
)

func TestPeriodForDate_ReferenceDay(t *testing.T) {
	tests := []struct {
		name         string
		date         time.Time
		referenceDay int32
		want         domain.Period
	}{
		{
			name:         "on the reference day starts the new period",
			date:         time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			referenceDay: 10,
			want:         domain.Period{Month: 3, Year: 2025},
		},
		{
			name:         "before the reference day belongs to the previous period",
			date:         time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			referenceDay: 10,
			want:         domain.Period{Month: 2, Year: 2025},
		},
		{
			name:         "early january falls back to december of previous year",
			date:         time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			referenceDay: 10,
			want:         domain.Period{Month: 12, Year: 2024},
		},
		{
			name:         "reference day 1 reduces to calendar months",
			date:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			referenceDay: 1,
			want:         domain.Period{Month: 3, Year: 2025},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodForDate(tt.date, tt.referenceDay)
			if got != tt.want {
				t.Errorf("PeriodForDate(%v, %d) = %v, want %v", tt.date, tt.referenceDay, got, tt.want)
			}
		})
	}
}

func TestDueDate_ClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		period  domain.Period
		dueDay  int32
		wantDay int
	}{
		{domain.Period{Month: 2, Year: 2025}, 31, 28}, // non leap year
		{domain.Period{Month: 2, Year: 2024}, 31, 29}, // leap year
		{domain.Period{Month: 4, Year: 2025}, 31, 30},
		{domain.Period{Month: 1, Year: 2025}, 15, 15},
		{domain.Period{Month: 1, Year: 2025}, 0, 1}, // invalid clamped up
	}

	for _, tt := range tests {
		got := DueDate(tt.period, tt.dueDay)
		if got.Day() != tt.wantDay {
			t.Errorf("DueDate(%v, %d).Day() = %d, want %d", tt.period, tt.dueDay, got.Day(), tt.wantDay)
		}
		if int(got.Month()) != tt.period.Month || got.Year() != tt.period.Year {
			t.Errorf("DueDate(%v, %d) = %v, wrong month/year", tt.period, tt.dueDay, got)
		}
	}
}
