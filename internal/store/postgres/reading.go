package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gosuda/aquabill/internal/domain"
)

const readingColumns = `id, tenant_id, reading_units, reading_date, recorded_date, notes, created_by`

type ReadingRepo struct {
	db dbtx
}

func NewReadingRepo(db dbtx) *ReadingRepo {
	return &ReadingRepo{db: db}
}

func scanReading(row pgx.Row) (*domain.WaterReading, error) {
	var wr domain.WaterReading
	err := row.Scan(&wr.ID, &wr.TenantID, &wr.ReadingUnits, &wr.ReadingDate, &wr.RecordedDate,
		&wr.Notes, &wr.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &wr, nil
}

func collectReadings(op string, rows pgx.Rows) ([]*domain.WaterReading, error) {
	defer rows.Close()

	var readings []*domain.WaterReading
	for rows.Next() {
		wr, err := scanReading(rows)
		if err != nil {
			return nil, storageErr(op+": scan", err)
		}
		readings = append(readings, wr)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op+": rows", err)
	}

	return readings, nil
}

func (r *ReadingRepo) Create(ctx context.Context, wr *domain.WaterReading) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO water_readings (tenant_id, reading_units, reading_date, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, recorded_date`,
		wr.TenantID, wr.ReadingUnits, wr.ReadingDate, wr.Notes, wr.CreatedBy,
	).Scan(&wr.ID, &wr.RecordedDate)
	if err != nil {
		return storageErr("readingRepo.Create", err)
	}

	return nil
}

func (r *ReadingRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*domain.WaterReading, error) {
	// LIMIT NULL means no limit.
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+readingColumns+`
		 FROM water_readings WHERE tenant_id = $1
		 ORDER BY reading_date DESC, id DESC
		 LIMIT $2`,
		tenantID, lim,
	)
	if err != nil {
		return nil, storageErr("readingRepo.ListByTenant", err)
	}

	return collectReadings("readingRepo.ListByTenant", rows)
}

func (r *ReadingRepo) Latest(ctx context.Context, tenantID string) (*domain.WaterReading, error) {
	readings, err := r.ListByTenant(ctx, tenantID, 1)
	if err != nil {
		return nil, fmt.Errorf("readingRepo.Latest: %w", err)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("readingRepo.Latest: %w", domain.ErrNotFound)
	}

	return readings[0], nil
}

func (r *ReadingRepo) ListRange(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.WaterReading, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+readingColumns+`
		 FROM water_readings
		 WHERE tenant_id = $1 AND reading_date BETWEEN $2 AND $3
		 ORDER BY reading_date ASC, id ASC`,
		tenantID, start, end,
	)
	if err != nil {
		return nil, storageErr("readingRepo.ListRange", err)
	}

	return collectReadings("readingRepo.ListRange", rows)
}

func (r *ReadingRepo) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM water_readings WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, storageErr("readingRepo.DeleteByTenant", err)
	}

	return tag.RowsAffected(), nil
}

