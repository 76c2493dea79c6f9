package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	constraintRunPeriod     = "uk_payroll_run_period"
	constraintPayoutCreator = "uk_payout_creator_period"
)

type payoutRepository struct {
	db *database.DB
}

func NewPayoutRepository(db *database.DB) payroll.PayoutStore {
	return &payoutRepository{db: db}
}

// ExistsForPeriod also sees payouts written without a run row, so periods
// computed before payroll_runs existed stay guarded.
func (r *payoutRepository) ExistsForPeriod(ctx context.Context, tenantID string, period payroll.PayrollPeriod) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payroll_runs
			WHERE agency_id = $1 AND period_start = $2 AND period_end = $3
		) OR EXISTS (
			SELECT 1 FROM payouts
			WHERE agency_id = $1 AND period_start = $2 AND period_end = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, tenantID, period.Start, period.End).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payroll period: %w", err)
	}
	return exists, nil
}

func (r *payoutRepository) InsertBatch(ctx context.Context, run payroll.PayrollRun, payouts []payroll.Payout) ([]payroll.Payout, error) {
	saved := make([]payroll.Payout, len(payouts))
	copy(saved, payouts)

	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		_, err := q.Exec(txCtx, `
			INSERT INTO payroll_runs (id, agency_id, period_start, period_end)
			VALUES ($1, $2, $3, $4)
		`, run.ID, run.TenantID, run.Period.Start, run.Period.End)
		if err != nil {
			if constraintViolated(err, constraintRunPeriod) {
				return payroll.ErrDuplicatePeriod
			}
			return fmt.Errorf("failed to create payroll run: %w", err)
		}

		insertQuery := `
			INSERT INTO payouts (
				id, run_id, agency_id, user_id, period_start, period_end,
				base_salary, base_salary_adjusted, bonus_commission, deductions,
				total_payout, below_minimum, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::payout_status)
			RETURNING created_at, updated_at
		`

		batch := &pgx.Batch{}
		for _, p := range saved {
			batch.Queue(insertQuery,
				p.ID, run.ID, run.TenantID, p.CreatorID, run.Period.Start, run.Period.End,
				p.BaseSalaryReference, p.BaseSalaryAdjusted, p.BonusCommission, p.Deductions,
				p.TotalPayout, p.BelowMinimum, string(p.Status),
			)
		}

		results := q.SendBatch(txCtx, batch)
		for i := range saved {
			if err := results.QueryRow().Scan(&saved[i].CreatedAt, &saved[i].UpdatedAt); err != nil {
				_ = results.Close()
				if constraintViolated(err, constraintPayoutCreator) {
					return payroll.ErrDuplicatePeriod
				}
				return fmt.Errorf("failed to insert payout for creator %s: %w", saved[i].CreatorID, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to insert payouts: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (r *payoutRepository) UpdateStatus(ctx context.Context, tenantID string, payoutID string, status payroll.PayoutStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payouts
		SET status = $1::payout_status, updated_at = NOW()
		WHERE id = $2 AND agency_id = $3
	`

	result, err := q.Exec(ctx, query, string(status), payoutID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update payout status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrPayoutNotFound
	}

	return nil
}

func (r *payoutRepository) List(ctx context.Context, tenantID string, filter payroll.PayoutFilter) ([]payroll.Payout, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payouts po
		LEFT JOIN profiles p ON po.user_id = p.id
		WHERE po.agency_id = $1
	`
	args := []any{tenantID}
	argIdx := 2

	if filter.PeriodStart != nil {
		baseQuery += fmt.Sprintf(" AND po.period_start >= $%d::date", argIdx)
		args = append(args, *filter.PeriodStart)
		argIdx++
	}
	if filter.PeriodEnd != nil {
		baseQuery += fmt.Sprintf(" AND po.period_end <= $%d::date", argIdx)
		args = append(args, *filter.PeriodEnd)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND po.status = $%d::payout_status", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.CreatorID != nil {
		baseQuery += fmt.Sprintf(" AND po.user_id = $%d", argIdx)
		args = append(args, *filter.CreatorID)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT po.id, po.run_id, po.agency_id, po.user_id, po.period_start, po.period_end,
			   po.base_salary, po.base_salary_adjusted, po.bonus_commission, po.deductions,
			   po.total_payout, po.below_minimum, po.status::text, po.created_at, po.updated_at,
			   p.name
		%s
		ORDER BY po.created_at DESC, p.name ASC
		LIMIT $%d OFFSET $%d
	`, baseQuery, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []payroll.Payout
	for rows.Next() {
		var p payroll.Payout
		var runID *string
		var status string
		if err := rows.Scan(
			&p.ID, &runID, &p.TenantID, &p.CreatorID, &p.Period.Start, &p.Period.End,
			&p.BaseSalaryReference, &p.BaseSalaryAdjusted, &p.BonusCommission, &p.Deductions,
			&p.TotalPayout, &p.BelowMinimum, &status, &p.CreatedAt, &p.UpdatedAt,
			&p.CreatorName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payout: %w", err)
		}
		if runID != nil {
			p.RunID = *runID
		}
		p.Status = payroll.PayoutStatus(status)
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payouts: %w", err)
	}

	return payouts, totalCount, nil
}

func (r *payoutRepository) Summary(ctx context.Context, tenantID string, period payroll.PayrollPeriod) (payroll.PayoutSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total_payouts,
			COUNT(*) FILTER (WHERE status = 'DRAFT') as draft_count,
			COUNT(*) FILTER (WHERE status = 'APPROVED') as approved_count,
			COUNT(*) FILTER (WHERE status = 'PAID') as paid_count,
			COUNT(*) FILTER (WHERE below_minimum) as below_minimum_count,
			COALESCE(SUM(base_salary_adjusted), 0) as total_base_salary_adjusted,
			COALESCE(SUM(bonus_commission), 0) as total_bonus_commission,
			COALESCE(SUM(total_payout), 0) as total_payout
		FROM payouts
		WHERE agency_id = $1 AND period_start = $2 AND period_end = $3
	`

	var summary payroll.PayoutSummaryResponse
	err := q.QueryRow(ctx, query, tenantID, period.Start, period.End).Scan(
		&summary.TotalPayouts, &summary.DraftCount, &summary.ApprovedCount, &summary.PaidCount,
		&summary.BelowMinimumCount, &summary.TotalBaseSalaryAdjusted, &summary.TotalBonusCommission,
		&summary.TotalPayout,
	)
	if err != nil {
		return payroll.PayoutSummaryResponse{}, fmt.Errorf("failed to get payout summary: %w", err)
	}

	return summary, nil
}
