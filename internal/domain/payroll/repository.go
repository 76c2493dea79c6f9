package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// All methods take the agency (tenant) id explicitly to prevent cross-agency data access.

// ConfigProvider reads the agency payroll configuration.
type ConfigProvider interface {
	// GetCompensationRule returns ErrConfigurationMissing when the agency has no rule.
	GetCompensationRule(ctx context.Context, tenantID string) (CompensationRule, error)
	GetCommissionSlabs(ctx context.Context, tenantID string) (map[string]CommissionSlabTable, error)
}

// CreatorDirectory lists creators eligible for payroll.
type CreatorDirectory interface {
	ListActive(ctx context.Context, tenantID string) ([]CreatorCompensationProfile, error)
}

// AttendanceStore aggregates completed live sessions.
type AttendanceStore interface {
	SumMinutes(ctx context.Context, tenantID string, creatorID string, period PayrollPeriod) (int, error)
}

// SalesStore aggregates daily sales.
type SalesStore interface {
	SumGMVAndCommission(ctx context.Context, tenantID string, creatorID string, period PayrollPeriod) (gmv decimal.Decimal, commission decimal.Decimal, err error)
}

// PayoutStore persists payouts.
type PayoutStore interface {
	ExistsForPeriod(ctx context.Context, tenantID string, period PayrollPeriod) (bool, error)
	// InsertBatch writes the run and all payouts atomically.
	// A second batch for the same (tenant, period) fails with ErrDuplicatePeriod.
	InsertBatch(ctx context.Context, run PayrollRun, payouts []Payout) ([]Payout, error)
	UpdateStatus(ctx context.Context, tenantID string, payoutID string, status PayoutStatus) error
	List(ctx context.Context, tenantID string, filter PayoutFilter) ([]Payout, int64, error)
	Summary(ctx context.Context, tenantID string, period PayrollPeriod) (PayoutSummaryResponse, error)
}
