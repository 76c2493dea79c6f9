package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type salesRepository struct {
	db *database.DB
}

func NewSalesRepository(db *database.DB) payroll.SalesStore {
	return &salesRepository{db: db}
}

func (r *salesRepository) SumGMVAndCommission(ctx context.Context, tenantID string, creatorID string, period payroll.PayrollPeriod) (decimal.Decimal, decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(gmv), 0), COALESCE(SUM(commission_gross), 0)
		FROM penjualan_harian
		WHERE agency_id = $1
		  AND user_id = $2
		  AND date BETWEEN $3 AND $4
	`

	var gmv, commission decimal.Decimal
	err := q.QueryRow(ctx, query, tenantID, creatorID, period.Start, period.End).Scan(&gmv, &commission)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum sales: %w", err)
	}

	return gmv, commission, nil
}
