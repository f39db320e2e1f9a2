package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Create appends the report. Reports are append-only; there is no
// update or delete path.
func (r *ReportRepo) Create(ctx context.Context, report model.Report, now time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO reports (
	id,
	reporter_id,
	reported_user_id,
	reason,
	description,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
`, report.ID, report.ReporterID, report.ReportedUserID, report.Reason.String(), report.Description, now.UTC()); err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	return nil
}
