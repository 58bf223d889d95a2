package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInternalError    = errors.New("internal error")
	ErrUserNotFound     = errors.New("user not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrPlanNotFound     = errors.New("installment plan not found")
	ErrCardNotFound     = errors.New("card not found")
	ErrInstanceNotFound = errors.New("obligation instance not found")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrPotNotFound      = errors.New("savings pot not found")

	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrInvalidDueDay       = errors.New("due day must be between 1 and 31")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrInvalidCategory     = errors.New("invalid expense category")
	ErrInvalidInstallments = errors.New("invalid installment count")
	ErrInvalidReferenceDay = errors.New("reference day must be between 1 and 31")
	ErrInvalidKind         = errors.New("invalid instance kind")
)

// Validation constants
const (
	MaxNameLength = 255
	MinDueDay     = 1
	MaxDueDay     = 31
)

// MaterializationFailure records one template whose instance could not be
// persisted during materialization.
type MaterializationFailure struct {
	Kind       InstanceKind `json:"kind"`
	TemplateID int32        `json:"templateId"`
	Name       string       `json:"name"`
	Err        error        `json:"-"`
}

// MaterializationError reports a partially failed materialization. The
// instances that were persisted successfully are still returned alongside it;
// callers treat the run as best-effort rather than all-or-nothing.
type MaterializationError struct {
	Period   Period
	Failures []MaterializationFailure
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("materialization of %s failed for %d of its templates", e.Period, len(e.Failures))
}
