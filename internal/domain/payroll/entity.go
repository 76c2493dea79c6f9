package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Date returns the calendar date (y, m, d) at midnight UTC.
// Callers must pass a day that exists in the month.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDate drops the clock part of t, keeping its calendar date in t's location.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// PayrollPeriod is an inclusive calendar range [Start, End].
type PayrollPeriod struct {
	Start time.Time
	End   time.Time
}

func (p PayrollPeriod) String() string {
	return p.Start.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

// MinimumPolicy enum
type MinimumPolicy string

const (
	MinimumPolicyProrataWithFlag MinimumPolicy = "prorata_with_flag"
)

// CompensationRule - Agency payroll configuration (aturan_payroll)
type CompensationRule struct {
	ID                 string
	TenantID           string
	DailyTargetMinutes int
	FloorPct           decimal.Decimal
	CapPct             decimal.Decimal
	MinimumMinutes     int
	Workdays           []time.Weekday
	Holidays           []time.Time
	MinimumPolicy      MinimumPolicy
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CommissionSlab - One GMV tier of a progressive bonus table
type CommissionSlab struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Rate decimal.Decimal `json:"rate"`
}

// CommissionSlabTable - Named slab table (aturan_komisi)
type CommissionSlabTable struct {
	ID       string
	TenantID string
	Name     string
	Slabs    []CommissionSlab
}

// CreatorCompensationProfile - Compensation fields of an active creator
type CreatorCompensationProfile struct {
	CreatorID   string
	Name        string
	BaseSalary  *decimal.Decimal
	HourlyRate  *decimal.Decimal
	SlabTableID *string
}

// CompensationMode enum
type CompensationMode int

const (
	CompensationModeNone CompensationMode = iota
	CompensationModeMonthly
	CompensationModeHourly
)

func (m CompensationMode) String() string {
	switch m {
	case CompensationModeMonthly:
		return "monthly"
	case CompensationModeHourly:
		return "hourly"
	default:
		return "none"
	}
}

// AttendanceSummary - Aggregate of completed live sessions in a period
type AttendanceSummary struct {
	CreatorID    string
	Period       PayrollPeriod
	TotalMinutes int
}

// SalesSummary - Aggregate of daily sales in a period
type SalesSummary struct {
	CreatorID       string
	Period          PayrollPeriod
	TotalGMV        decimal.Decimal
	TotalCommission decimal.Decimal
}

// PayoutStatus enum
type PayoutStatus string

const (
	PayoutStatusDraft    PayoutStatus = "DRAFT"
	PayoutStatusApproved PayoutStatus = "APPROVED"
	PayoutStatusPaid     PayoutStatus = "PAID"
)

// ParsePayoutStatus accepts only the known status literals.
func ParsePayoutStatus(s string) (PayoutStatus, error) {
	switch PayoutStatus(s) {
	case PayoutStatusDraft, PayoutStatusApproved, PayoutStatusPaid:
		return PayoutStatus(s), nil
	default:
		return "", ErrInvalidPayoutStatus
	}
}

// Payout - Generated pay record for one creator and period
type Payout struct {
	ID                  string
	RunID               string
	TenantID            string
	CreatorID           string
	Period              PayrollPeriod
	BaseSalaryReference decimal.Decimal
	BaseSalaryAdjusted  decimal.Decimal
	BonusCommission     decimal.Decimal
	Deductions          decimal.Decimal
	TotalPayout         decimal.Decimal
	BelowMinimum        bool
	Status              PayoutStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Joined fields
	CreatorName *string
}

// PayrollRun - One committed computation for (tenant, period)
type PayrollRun struct {
	ID       string
	TenantID string
	Period   PayrollPeriod
}

// RunStage enum
type RunStage string

const (
	RunStageNotStarted  RunStage = "not_started"
	RunStageValidating  RunStage = "validating"
	RunStageAggregating RunStage = "aggregating"
	RunStageComputing   RunStage = "computing"
	RunStagePersisting  RunStage = "persisting"
	RunStageDone        RunStage = "done"
	RunStageAborted     RunStage = "aborted"
)
