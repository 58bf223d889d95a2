package util

import (
	"time"

	"github.com/moncash/moncash-backend/internal/domain"
)

// PeriodForDate resolves which financial period a date belongs to, given the
// owner's reference day. Days before the reference day still belong to the
// previous period; a reference day of 1 reduces to plain calendar months.
func PeriodForDate(t time.Time, referenceDay int32) domain.Period {
	p := domain.Period{Month: int(t.Month()), Year: t.Year()}
	if referenceDay > 1 && int32(t.Day()) < referenceDay {
		return p.Previous()
	}
	return p
}

// CurrentPeriod resolves the active period for the given reference day
func CurrentPeriod(referenceDay int32) domain.Period {
	return PeriodForDate(time.Now(), referenceDay)
}

// DueDate returns the concrete due date of a due day inside a period,
// clamping days past the month's end (e.g. day 31 in February becomes
// Feb 28/29). Due days below 1 are clamped to 1.
func DueDate(p domain.Period, dueDay int32) time.Time {
	day := int(dueDay)
	if day < 1 {
		day = 1
	}

	// Day 0 of the next month is the last day of this one
	lastDay := time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}
