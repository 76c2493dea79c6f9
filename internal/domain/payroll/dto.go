package payroll

import (
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type ComputePayrollRequest struct {
	// ReferenceDate selects the period containing that day; empty = today.
	ReferenceDate *string `json:"reference_date,omitempty"`
}

func (r *ComputePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ReferenceDate != nil {
		if _, ok := validator.IsValidDate(*r.ReferenceDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "reference_date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedReferenceDate returns nil when no reference date was given.
func (r *ComputePayrollRequest) ParsedReferenceDate() *time.Time {
	if r.ReferenceDate == nil {
		return nil
	}
	d, ok := validator.IsValidDate(*r.ReferenceDate)
	if !ok {
		return nil
	}
	return &d
}

type CreatorWarning struct {
	CreatorID string `json:"creator_id"`
	Message   string `json:"message"`
}

type PayoutBatchResult struct {
	RunID           string           `json:"run_id,omitempty"`
	PeriodStart     string           `json:"period_start"`
	PeriodEnd       string           `json:"period_end"`
	PayableWorkdays int              `json:"payable_workdays"`
	TargetMinutes   int              `json:"target_minutes"`
	Payouts         []PayoutResponse `json:"payouts"`
	Warnings        []CreatorWarning `json:"warnings,omitempty"`
	TotalPayout     decimal.Decimal  `json:"total_payout"`
}

type PeriodPreviewResponse struct {
	PeriodStart        string `json:"period_start"`
	PeriodEnd          string `json:"period_end"`
	PayableWorkdays    int    `json:"payable_workdays"`
	DailyTargetMinutes int    `json:"daily_target_minutes"`
	TargetMinutes      int    `json:"target_minutes"`
	AlreadyComputed    bool   `json:"already_computed"`
}

// ========== PAYOUT DTOs ==========

type UpdatePayoutStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdatePayoutStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if _, err := ParsePayoutStatus(r.Status); err != nil {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of DRAFT, APPROVED, PAID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayoutResponse struct {
	ID                 string          `json:"id"`
	CreatorID          string          `json:"creator_id"`
	CreatorName        string          `json:"creator_name,omitempty"`
	PeriodStart        string          `json:"period_start"`
	PeriodEnd          string          `json:"period_end"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	BaseSalaryAdjusted decimal.Decimal `json:"base_salary_adjusted"`
	BonusCommission    decimal.Decimal `json:"bonus_commission"`
	Deductions         decimal.Decimal `json:"deductions"`
	TotalPayout        decimal.Decimal `json:"total_payout"`
	BelowMinimum       bool            `json:"below_minimum"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"created_at,omitempty"`
}

type PayoutFilter struct {
	PeriodStart *string `json:"period_start,omitempty"`
	PeriodEnd   *string `json:"period_end,omitempty"`
	Status      *string `json:"status,omitempty"`
	CreatorID   *string `json:"creator_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *PayoutFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.PeriodStart != nil {
		if _, ok := validator.IsValidDate(*f.PeriodStart); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if f.PeriodEnd != nil {
		if _, ok := validator.IsValidDate(*f.PeriodEnd); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if f.Status != nil {
		if _, err := ParsePayoutStatus(*f.Status); err != nil {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of DRAFT, APPROVED, PAID"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayoutResponse struct {
	Data       []PayoutResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type PayoutSummaryResponse struct {
	PeriodStart             string          `json:"period_start"`
	PeriodEnd               string          `json:"period_end"`
	TotalPayouts            int             `json:"total_payouts"`
	DraftCount              int             `json:"draft_count"`
	ApprovedCount           int             `json:"approved_count"`
	PaidCount               int             `json:"paid_count"`
	BelowMinimumCount       int             `json:"below_minimum_count"`
	TotalBaseSalaryAdjusted decimal.Decimal `json:"total_base_salary_adjusted"`
	TotalBonusCommission    decimal.Decimal `json:"total_bonus_commission"`
	TotalPayout             decimal.Decimal `json:"total_payout"`
}

type PayoutSummaryRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

func (r *PayoutSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.PeriodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.PeriodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must not be before period_start"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period assumes Validate passed.
func (r *PayoutSummaryRequest) Period() PayrollPeriod {
	start, _ := validator.IsValidDate(r.PeriodStart)
	end, _ := validator.IsValidDate(r.PeriodEnd)
	return PayrollPeriod{Start: start, End: end}
}
