package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollConfigRepository struct {
	db *database.DB
}

func NewPayrollConfigRepository(db *database.DB) payroll.ConfigProvider {
	return &payrollConfigRepository{db: db}
}

func (r *payrollConfigRepository) GetCompensationRule(ctx context.Context, tenantID string) (payroll.CompensationRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, agency_id, daily_live_target_minutes, floor_pct, cap_pct,
			   minimum_minutes, workdays, holidays, minimum_policy,
			   created_at, updated_at
		FROM aturan_payroll
		WHERE agency_id = $1
	`

	var rule payroll.CompensationRule
	var workdays []int32
	var holidays []time.Time
	var policy string
	err := q.QueryRow(ctx, query, tenantID).Scan(
		&rule.ID, &rule.TenantID, &rule.DailyTargetMinutes, &rule.FloorPct, &rule.CapPct,
		&rule.MinimumMinutes, &workdays, &holidays, &policy,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.CompensationRule{}, payroll.ErrConfigurationMissing
		}
		return payroll.CompensationRule{}, fmt.Errorf("failed to get payroll rule: %w", err)
	}

	rule.Workdays = make([]time.Weekday, 0, len(workdays))
	for _, wd := range workdays {
		if wd < 0 || wd > 6 {
			continue
		}
		rule.Workdays = append(rule.Workdays, time.Weekday(wd))
	}
	rule.Holidays = holidays
	rule.MinimumPolicy = payroll.MinimumPolicy(policy)

	return rule, nil
}

func (r *payrollConfigRepository) GetCommissionSlabs(ctx context.Context, tenantID string) (map[string]payroll.CommissionSlabTable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, agency_id, nama_aturan, slabs
		FROM aturan_komisi
		WHERE agency_id = $1
	`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query commission slabs: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]payroll.CommissionSlabTable)
	for rows.Next() {
		var t payroll.CommissionSlabTable
		var slabsBytes []byte
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &slabsBytes); err != nil {
			return nil, fmt.Errorf("failed to scan commission slabs: %w", err)
		}
		if len(slabsBytes) > 0 {
			if err := json.Unmarshal(slabsBytes, &t.Slabs); err != nil {
				return nil, fmt.Errorf("invalid slabs in commission table %s: %w", t.ID, err)
			}
		}
		tables[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate commission slabs: %w", err)
	}

	return tables, nil
}
