package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
)

// runTracker records the stage a run has reached so failures can report where they stopped.
type runTracker struct {
	logger   *slog.Logger
	tenantID string
	period   payroll.PayrollPeriod
	stage    payroll.RunStage
}

func newRunTracker(logger *slog.Logger, tenantID string, period payroll.PayrollPeriod) *runTracker {
	return &runTracker{
		logger:   logger,
		tenantID: tenantID,
		period:   period,
		stage:    payroll.RunStageNotStarted,
	}
}

func (r *runTracker) enter(stage payroll.RunStage) {
	r.stage = stage
	r.logger.Debug("Payroll run stage",
		"agency_id", r.tenantID,
		"period", r.period.String(),
		"stage", stage,
	)
}

// abort wraps err in a RunError tagged with the current stage. A run that
// hits its deadline is reported as an aggregation failure.
func (r *runTracker) abort(creatorID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, payroll.ErrAggregationFailure) {
		err = fmt.Errorf("%w: %w", payroll.ErrAggregationFailure, err)
	}

	runErr := &payroll.RunError{
		TenantID:  r.tenantID,
		Period:    r.period,
		Stage:     r.stage,
		CreatorID: creatorID,
		Err:       err,
	}

	level := slog.LevelError
	if errors.Is(err, payroll.ErrDuplicatePeriod) || errors.Is(err, payroll.ErrConfigurationMissing) || errors.Is(err, payroll.ErrInvalidPeriod) {
		level = slog.LevelWarn
	}
	r.logger.Log(context.Background(), level, "Payroll run aborted",
		"agency_id", r.tenantID,
		"period", r.period.String(),
		"stage", r.stage,
		"creator_id", creatorID,
		"error", err,
	)

	r.stage = payroll.RunStageAborted
	return runErr
}
