package payroll

import (
	"context"
	"time"
)

// PayrollService defines the payroll operations exposed to the HTTP layer.
type PayrollService interface {
	// ComputePayroll runs payroll for the period containing referenceDate (today when nil).
	ComputePayroll(ctx context.Context, tenantID string, referenceDate *time.Time) (PayoutBatchResult, error)

	// Run computes and persists payouts for an explicit period.
	Run(ctx context.Context, tenantID string, period PayrollPeriod) (PayoutBatchResult, error)

	// PreviewPeriod reports the period, payable workdays and target minutes without writing anything.
	PreviewPeriod(ctx context.Context, tenantID string, referenceDate *time.Time) (PeriodPreviewResponse, error)

	// SetPayoutStatus overwrites the status of one payout. Any transition is allowed.
	SetPayoutStatus(ctx context.Context, tenantID string, req UpdatePayoutStatusRequest) error

	ListPayouts(ctx context.Context, tenantID string, filter PayoutFilter) (ListPayoutResponse, error)
	GetPayoutSummary(ctx context.Context, tenantID string, period PayrollPeriod) (PayoutSummaryResponse, error)
}
