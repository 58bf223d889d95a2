package service

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/util"
)

// Totals is the aggregate financial picture of one period
type Totals struct {
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	TotalPending    decimal.Decimal `json:"totalPending"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	ProgressPercent int             `json:"progressPercent"`
	AllPaid         bool            `json:"allPaid"`
}

// ComputeTotals derives the period totals from its instances and expenses.
// Instances without an amount (unset card invoices, variable bills) count
// toward progress but contribute zero to the sums.
func ComputeTotals(instances []*domain.ObligationInstance, expenses []*domain.Expense, initialBalance decimal.Decimal) Totals {
	totalPaid := decimal.Zero
	totalPending := decimal.Zero
	paidCount := 0

	for _, inst := range instances {
		amount := decimal.Zero
		if inst.Amount != nil {
			amount = *inst.Amount
		}
		if inst.Paid {
			totalPaid = totalPaid.Add(amount)
			paidCount++
		} else {
			totalPending = totalPending.Add(amount)
		}
	}

	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	progress := 0
	if len(instances) > 0 {
		progress = int(math.Round(100 * float64(paidCount) / float64(len(instances))))
	}

	return Totals{
		TotalPaid:       totalPaid,
		TotalPending:    totalPending,
		TotalExpenses:   totalExpenses,
		CurrentBalance:  initialBalance.Sub(totalPaid).Sub(totalExpenses),
		ProgressPercent: progress,
		AllPaid:         len(instances) > 0 && paidCount == len(instances),
	}
}

// ExpensesInPeriod filters expenses whose date falls into the given period
// under the owner's reference day.
func ExpensesInPeriod(expenses []*domain.Expense, period domain.Period, referenceDay int32) []*domain.Expense {
	result := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if util.PeriodForDate(e.Date, referenceDay) == period {
			result = append(result, e)
		}
	}
	return result
}

// OverdueAmount sums the unpaid instances whose due date within the period
// has already passed.
func OverdueAmount(instances []*domain.ObligationInstance, period domain.Period, now time.Time) decimal.Decimal {
	overdue := decimal.Zero
	for _, inst := range instances {
		if inst.Paid || inst.Amount == nil {
			continue
		}
		due := util.DueDate(period, inst.DueDay)
		if due.Before(now) {
			overdue = overdue.Add(*inst.Amount)
		}
	}
	return overdue
}
