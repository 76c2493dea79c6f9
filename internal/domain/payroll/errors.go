package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrConfigurationMissing  = errors.New("payroll rules are not configured for this agency")
	ErrDuplicatePeriod       = errors.New("payroll already computed for this period")
	ErrAggregationFailure    = errors.New("failed to aggregate creator performance")
	ErrInvalidCreatorProfile = errors.New("creator compensation profile is invalid")
	ErrPayoutNotFound        = errors.New("payout not found")
	ErrInvalidPayoutStatus   = errors.New("invalid payout status")
	ErrTenantRequired        = errors.New("agency id is required")
	ErrInvalidPeriod         = errors.New("payroll period ends before it starts")
)

// RunError carries the context of a failed payroll run.
type RunError struct {
	TenantID  string
	Period    PayrollPeriod
	Stage     RunStage
	CreatorID string
	Err       error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("payroll run for agency %s period %s aborted at %s", e.TenantID, e.Period, e.Stage)
	if e.CreatorID != "" {
		msg += fmt.Sprintf(" (creator %s)", e.CreatorID)
	}
	return msg + ": " + e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}
