package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

const (
	roleCreator  = "CREATOR"
	statusActive = "ACTIVE"
)

type creatorRepository struct {
	db *database.DB
}

func NewCreatorRepository(db *database.DB) payroll.CreatorDirectory {
	return &creatorRepository{db: db}
}

func (r *creatorRepository) ListActive(ctx context.Context, tenantID string) ([]payroll.CreatorCompensationProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, base_salary, hourly_rate, id_aturan_komisi
		FROM profiles
		WHERE agency_id = $1 AND role = $2 AND status = $3
		ORDER BY name ASC, id ASC
	`

	rows, err := q.Query(ctx, query, tenantID, roleCreator, statusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active creators: %w", err)
	}
	defer rows.Close()

	var creators []payroll.CreatorCompensationProfile
	for rows.Next() {
		var c payroll.CreatorCompensationProfile
		var baseSalary, hourlyRate decimal.NullDecimal
		if err := rows.Scan(&c.CreatorID, &c.Name, &baseSalary, &hourlyRate, &c.SlabTableID); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		c.BaseSalary = nullDecimalPtr(baseSalary)
		c.HourlyRate = nullDecimalPtr(hourlyRate)
		creators = append(creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate creators: %w", err)
	}

	return creators, nil
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
