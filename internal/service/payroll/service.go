package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxConcurrency = 8
	defaultRunTimeout     = 60 * time.Second
	defaultPageLimit      = 20
)

// Options tunes a PayrollServiceImpl. Zero values fall back to defaults.
type Options struct {
	MaxConcurrency int
	RunTimeout     time.Duration
	Location       *time.Location
	Logger         *slog.Logger
	Now            func() time.Time
}

type PayrollServiceImpl struct {
	configProvider payroll.ConfigProvider
	creators       payroll.CreatorDirectory
	attendance     payroll.AttendanceStore
	sales          payroll.SalesStore
	payouts        payroll.PayoutStore

	maxConcurrency int
	runTimeout     time.Duration
	location       *time.Location
	logger         *slog.Logger
	now            func() time.Time
}

func NewPayrollService(
	configProvider payroll.ConfigProvider,
	creators payroll.CreatorDirectory,
	attendance payroll.AttendanceStore,
	sales payroll.SalesStore,
	payouts payroll.PayoutStore,
	opts Options,
) *PayrollServiceImpl {
	s := &PayrollServiceImpl{
		configProvider: configProvider,
		creators:       creators,
		attendance:     attendance,
		sales:          sales,
		payouts:        payouts,
		maxConcurrency: opts.MaxConcurrency,
		runTimeout:     opts.RunTimeout,
		location:       opts.Location,
		logger:         opts.Logger,
		now:            opts.Now,
	}
	if s.maxConcurrency <= 0 {
		s.maxConcurrency = defaultMaxConcurrency
	}
	if s.runTimeout <= 0 {
		s.runTimeout = defaultRunTimeout
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// ========== RUN ==========

func (s *PayrollServiceImpl) ComputePayroll(ctx context.Context, tenantID string, referenceDate *time.Time) (payroll.PayoutBatchResult, error) {
	return s.Run(ctx, tenantID, CurrentPeriod(s.referenceDay(referenceDate)))
}

// Run computes one payout per active creator and commits them as a single batch.
// Nothing is written unless every creator's facts were read successfully.
func (s *PayrollServiceImpl) Run(ctx context.Context, tenantID string, period payroll.PayrollPeriod) (payroll.PayoutBatchResult, error) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	run := newRunTracker(s.logger, tenantID, period)
	result, err := s.run(ctx, run)

	metrics.ObservePayrollRun(runOutcome(err), time.Since(started), len(result.Payouts))
	if err != nil {
		return payroll.PayoutBatchResult{}, err
	}
	return result, nil
}

func (s *PayrollServiceImpl) run(ctx context.Context, run *runTracker) (payroll.PayoutBatchResult, error) {
	tenantID, period := run.tenantID, run.period

	run.enter(payroll.RunStageValidating)
	if tenantID == "" {
		return payroll.PayoutBatchResult{}, run.abort("", payroll.ErrTenantRequired)
	}
	if period.End.Before(period.Start) {
		return payroll.PayoutBatchResult{}, run.abort("", payroll.ErrInvalidPeriod)
	}

	exists, err := s.payouts.ExistsForPeriod(ctx, tenantID, period)
	if err != nil {
		return payroll.PayoutBatchResult{}, run.abort("", fmt.Errorf("failed to check existing payouts: %w", err))
	}
	if exists {
		return payroll.PayoutBatchResult{}, run.abort("", payroll.ErrDuplicatePeriod)
	}

	rule, err := s.configProvider.GetCompensationRule(ctx, tenantID)
	if err != nil {
		return payroll.PayoutBatchResult{}, run.abort("", err)
	}

	slabTables, err := s.configProvider.GetCommissionSlabs(ctx, tenantID)
	if err != nil {
		return payroll.PayoutBatchResult{}, run.abort("", fmt.Errorf("failed to load commission slabs: %w", err))
	}

	run.enter(payroll.RunStageAggregating)
	creators, err := s.creators.ListActive(ctx, tenantID)
	if err != nil {
		return payroll.PayoutBatchResult{}, run.abort("", fmt.Errorf("%w: list active creators: %w", payroll.ErrAggregationFailure, err))
	}

	facts, err := s.aggregate(ctx, tenantID, period, creators)
	if err != nil {
		var fe *factError
		if errors.As(err, &fe) {
			return payroll.PayoutBatchResult{}, run.abort(fe.creatorID, fmt.Errorf("%w: %w", payroll.ErrAggregationFailure, fe.err))
		}
		return payroll.PayoutBatchResult{}, run.abort("", fmt.Errorf("%w: %w", payroll.ErrAggregationFailure, err))
	}

	run.enter(payroll.RunStageComputing)
	workdays := PayableWorkdays(period, rule.Workdays, rule.Holidays)
	targetMinutes := TargetMinutes(period, rule)

	payrollRun := payroll.PayrollRun{
		ID:       newID(),
		TenantID: tenantID,
		Period:   period,
	}

	payouts := make([]payroll.Payout, 0, len(creators))
	var warnings []payroll.CreatorWarning
	for i, profile := range creators {
		payout, warning := computePayout(payrollRun, profile, facts[i], targetMinutes, rule, slabTables)
		if warning != nil {
			warnings = append(warnings, *warning)
			s.logger.Warn("Creator compensation profile is invalid",
				"agency_id", tenantID, "creator_id", profile.CreatorID, "reason", warning.Message)
		}
		s.logger.Debug("Payout computed",
			"agency_id", tenantID,
			"creator_id", profile.CreatorID,
			"total_minutes", facts[i].attendance.TotalMinutes,
			"avg_commission_rate", AverageCommissionRate(facts[i].sales.TotalGMV, facts[i].sales.TotalCommission).String(),
			"total_payout", payout.TotalPayout.String(),
		)
		payouts = append(payouts, payout)
	}

	result := payroll.PayoutBatchResult{
		PeriodStart:     period.Start.Format(payroll.DateLayout),
		PeriodEnd:       period.End.Format(payroll.DateLayout),
		PayableWorkdays: workdays,
		TargetMinutes:   targetMinutes,
		Payouts:         []payroll.PayoutResponse{},
		Warnings:        warnings,
		TotalPayout:     decimal.Zero,
	}

	if len(payouts) == 0 {
		run.enter(payroll.RunStageDone)
		s.logger.Info("Payroll run found no active creators", "agency_id", tenantID, "period", period.String())
		return result, nil
	}

	run.enter(payroll.RunStagePersisting)
	saved, err := s.payouts.InsertBatch(ctx, payrollRun, payouts)
	if err != nil {
		return payroll.PayoutBatchResult{}, run.abort("", err)
	}

	run.enter(payroll.RunStageDone)

	result.RunID = payrollRun.ID
	result.Payouts = mapToPayoutResponses(saved)
	for _, p := range saved {
		result.TotalPayout = result.TotalPayout.Add(p.TotalPayout)
	}

	s.logger.Info("Payroll run completed",
		"agency_id", tenantID,
		"period", period.String(),
		"run_id", payrollRun.ID,
		"payouts", len(saved),
		"total_payout", result.TotalPayout.String(),
	)

	return result, nil
}

type creatorFacts struct {
	attendance payroll.AttendanceSummary
	sales      payroll.SalesSummary
}

type factError struct {
	creatorID string
	err       error
}

func (e *factError) Error() string {
	return fmt.Sprintf("creator %s: %v", e.creatorID, e.err)
}

func (e *factError) Unwrap() error {
	return e.err
}

// aggregate reads attendance and sales for every creator with bounded
// concurrency. The first failure cancels the remaining reads.
func (s *PayrollServiceImpl) aggregate(ctx context.Context, tenantID string, period payroll.PayrollPeriod, creators []payroll.CreatorCompensationProfile) ([]creatorFacts, error) {
	facts := make([]creatorFacts, len(creators))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, creator := range creators {
		i, creator := i, creator
		facts[i].attendance = payroll.AttendanceSummary{CreatorID: creator.CreatorID, Period: period}
		facts[i].sales = payroll.SalesSummary{CreatorID: creator.CreatorID, Period: period}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &factError{creatorID: creator.CreatorID, err: err}
			}
			minutes, err := s.attendance.SumMinutes(gctx, tenantID, creator.CreatorID, period)
			if err != nil {
				return &factError{creatorID: creator.CreatorID, err: fmt.Errorf("sum live minutes: %w", err)}
			}
			facts[i].attendance.TotalMinutes = minutes
			return nil
		})

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &factError{creatorID: creator.CreatorID, err: err}
			}
			gmv, commission, err := s.sales.SumGMVAndCommission(gctx, tenantID, creator.CreatorID, period)
			if err != nil {
				return &factError{creatorID: creator.CreatorID, err: fmt.Errorf("sum sales: %w", err)}
			}
			facts[i].sales.TotalGMV = gmv
			facts[i].sales.TotalCommission = commission
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return facts, nil
}

func computePayout(
	run payroll.PayrollRun,
	profile payroll.CreatorCompensationProfile,
	facts creatorFacts,
	targetMinutes int,
	rule payroll.CompensationRule,
	slabTables map[string]payroll.CommissionSlabTable,
) (payroll.Payout, *payroll.CreatorWarning) {
	totalMinutes := facts.attendance.TotalMinutes

	mode, valid := ResolveMode(profile)
	var warning *payroll.CreatorWarning
	if !valid {
		reason := "neither base salary nor hourly rate is set"
		if mode == payroll.CompensationModeMonthly {
			reason = "both base salary and hourly rate are set, monthly salary applied"
		}
		warning = &payroll.CreatorWarning{
			CreatorID: profile.CreatorID,
			Message:   fmt.Sprintf("%s: %s", payroll.ErrInvalidCreatorProfile, reason),
		}
	}

	basePay := BasePay(mode, profile, totalMinutes, targetMinutes, rule)
	bonus := bonusForCreator(profile, slabTables, facts.sales)
	deductions := decimal.Zero

	creatorName := profile.Name
	return payroll.Payout{
		ID:                  newID(),
		RunID:               run.ID,
		TenantID:            run.TenantID,
		CreatorID:           profile.CreatorID,
		Period:              run.Period,
		BaseSalaryReference: BaseSalaryReference(mode, profile),
		BaseSalaryAdjusted:  basePay,
		BonusCommission:     bonus,
		Deductions:          deductions,
		TotalPayout:         basePay.Add(bonus).Sub(deductions),
		BelowMinimum:        BelowMinimum(totalMinutes, rule),
		Status:              payroll.PayoutStatusDraft,
		CreatorName:         &creatorName,
	}, warning
}

// ========== PREVIEW ==========

func (s *PayrollServiceImpl) PreviewPeriod(ctx context.Context, tenantID string, referenceDate *time.Time) (payroll.PeriodPreviewResponse, error) {
	if tenantID == "" {
		return payroll.PeriodPreviewResponse{}, payroll.ErrTenantRequired
	}

	period := CurrentPeriod(s.referenceDay(referenceDate))

	rule, err := s.configProvider.GetCompensationRule(ctx, tenantID)
	if err != nil {
		return payroll.PeriodPreviewResponse{}, err
	}

	exists, err := s.payouts.ExistsForPeriod(ctx, tenantID, period)
	if err != nil {
		return payroll.PeriodPreviewResponse{}, fmt.Errorf("failed to check existing payouts: %w", err)
	}

	return payroll.PeriodPreviewResponse{
		PeriodStart:        period.Start.Format(payroll.DateLayout),
		PeriodEnd:          period.End.Format(payroll.DateLayout),
		PayableWorkdays:    PayableWorkdays(period, rule.Workdays, rule.Holidays),
		DailyTargetMinutes: rule.DailyTargetMinutes,
		TargetMinutes:      TargetMinutes(period, rule),
		AlreadyComputed:    exists,
	}, nil
}

// ========== PAYOUTS ==========

func (s *PayrollServiceImpl) SetPayoutStatus(ctx context.Context, tenantID string, req payroll.UpdatePayoutStatusRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if tenantID == "" {
		return payroll.ErrTenantRequired
	}

	status, err := payroll.ParsePayoutStatus(req.Status)
	if err != nil {
		return err
	}

	if err := s.payouts.UpdateStatus(ctx, tenantID, req.ID, status); err != nil {
		return err
	}

	metrics.ObservePayoutStatusUpdate(string(status))
	s.logger.Info("Payout status updated", "agency_id", tenantID, "payout_id", req.ID, "status", status)
	return nil
}

func (s *PayrollServiceImpl) ListPayouts(ctx context.Context, tenantID string, filter payroll.PayoutFilter) (payroll.ListPayoutResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayoutResponse{}, err
	}
	if tenantID == "" {
		return payroll.ListPayoutResponse{}, payroll.ErrTenantRequired
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	payouts, totalCount, err := s.payouts.List(ctx, tenantID, filter)
	if err != nil {
		return payroll.ListPayoutResponse{}, err
	}

	return payroll.ListPayoutResponse{
		Data:       mapToPayoutResponses(payouts),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetPayoutSummary(ctx context.Context, tenantID string, period payroll.PayrollPeriod) (payroll.PayoutSummaryResponse, error) {
	if tenantID == "" {
		return payroll.PayoutSummaryResponse{}, payroll.ErrTenantRequired
	}

	summary, err := s.payouts.Summary(ctx, tenantID, period)
	if err != nil {
		return payroll.PayoutSummaryResponse{}, err
	}
	summary.PeriodStart = period.Start.Format(payroll.DateLayout)
	summary.PeriodEnd = period.End.Format(payroll.DateLayout)
	return summary, nil
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) referenceDay(referenceDate *time.Time) time.Time {
	if referenceDate != nil {
		return *referenceDate
	}
	return s.now().In(s.location)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func runOutcome(err error) string {
	switch {
	case err == nil:
		return "done"
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		return "duplicate_period"
	case errors.Is(err, payroll.ErrConfigurationMissing):
		return "configuration_missing"
	case errors.Is(err, payroll.ErrAggregationFailure):
		return "aggregation_failure"
	default:
		return "error"
	}
}

func mapToPayoutResponse(p payroll.Payout) payroll.PayoutResponse {
	creatorName := ""
	if p.CreatorName != nil {
		creatorName = *p.CreatorName
	}

	createdAt := ""
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.Format(time.RFC3339)
	}

	return payroll.PayoutResponse{
		ID:                 p.ID,
		CreatorID:          p.CreatorID,
		CreatorName:        creatorName,
		PeriodStart:        p.Period.Start.Format(payroll.DateLayout),
		PeriodEnd:          p.Period.End.Format(payroll.DateLayout),
		BaseSalary:         p.BaseSalaryReference,
		BaseSalaryAdjusted: p.BaseSalaryAdjusted,
		BonusCommission:    p.BonusCommission,
		Deductions:         p.Deductions,
		TotalPayout:        p.TotalPayout,
		BelowMinimum:       p.BelowMinimum,
		Status:             string(p.Status),
		CreatedAt:          createdAt,
	}
}

func mapToPayoutResponses(payouts []payroll.Payout) []payroll.PayoutResponse {
	result := make([]payroll.PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		result = append(result, mapToPayoutResponse(p))
	}
	return result
}
