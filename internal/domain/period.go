package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Period is one financial cycle, identified by calendar month and year.
// Instances are bucketed by Period regardless of the owner's reference day.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Validate checks that the period is usable
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	if p.Year < 2000 || p.Year > 2100 {
		return ErrInvalidPeriod
	}
	return nil
}

// Previous returns the period immediately before p
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Next returns the period immediately after p
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// Contains reports whether t falls inside the period's calendar month
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// PeriodContext scopes an engine call to one owner and one period. It is
// passed explicitly into every call instead of living in shared state, so
// concurrent navigations cannot corrupt each other.
type PeriodContext struct {
	OwnerID uuid.UUID
	Period
}

// PeriodMarkerRepository records which periods have been materialized. The
// marker is independent of the instance count, so a legitimately empty period
// is still distinguishable from one that was never materialized.
type PeriodMarkerRepository interface {
	IsMaterialized(ownerID uuid.UUID, year, month int) (bool, error)
	MarkMaterialized(ownerID uuid.UUID, year, month int) error
}
