package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/database"
)

type liveSessionRepository struct {
	db       *database.DB
	location *time.Location
}

// NewLiveSessionRepository aggregates live sessions. Period dates are
// interpreted as calendar days in location.
func NewLiveSessionRepository(db *database.DB, location *time.Location) payroll.AttendanceStore {
	if location == nil {
		location = time.UTC
	}
	return &liveSessionRepository{db: db, location: location}
}

// SumMinutes counts completed sessions (check-out recorded) whose check-in falls inside the period.
func (r *liveSessionRepository) SumMinutes(ctx context.Context, tenantID string, creatorID string, period payroll.PayrollPeriod) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM sesi_live
		WHERE agency_id = $1
		  AND user_id = $2
		  AND check_out IS NOT NULL
		  AND check_in >= $3
		  AND check_in < $4
	`

	from, until := r.bounds(period)

	var total int64
	if err := q.QueryRow(ctx, query, tenantID, creatorID, from, until).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum live minutes: %w", err)
	}
	if total < 0 {
		total = 0
	}

	return int(total), nil
}

// bounds returns [start 00:00, day after end 00:00) in the repository's location.
func (r *liveSessionRepository) bounds(period payroll.PayrollPeriod) (time.Time, time.Time) {
	sy, sm, sd := period.Start.Date()
	ey, em, ed := period.End.Date()
	from := time.Date(sy, sm, sd, 0, 0, 0, 0, r.location)
	until := time.Date(ey, em, ed+1, 0, 0, 0, 0, r.location)
	return from, until
}
