package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gosuda/aquabill/internal/domain"
)

const billColumns = `id, tenant_id, bill_period_start, bill_period_end, start_reading_id, end_reading_id,
	units_consumed, rate_per_unit, total_amount, currency, bill_status, generated_date, due_date, paid_date`

type BillRepo struct {
	db dbtx
}

func NewBillRepo(db dbtx) *BillRepo {
	return &BillRepo{db: db}
}

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var b domain.Bill
	err := row.Scan(&b.ID, &b.TenantID, &b.PeriodStart, &b.PeriodEnd, &b.StartReadingID, &b.EndReadingID,
		&b.UnitsConsumed, &b.RatePerUnit, &b.TotalAmount, &b.Currency, &b.Status,
		&b.GeneratedAt, &b.DueDate, &b.PaidAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBills(op string, rows pgx.Rows) ([]*domain.Bill, error) {
	defer rows.Close()

	var bills []*domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, storageErr(op+": scan", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op+": rows", err)
	}

	return bills, nil
}

func (r *BillRepo) Create(ctx context.Context, b *domain.Bill) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO bills (tenant_id, bill_period_start, bill_period_end, start_reading_id, end_reading_id,
		                    units_consumed, rate_per_unit, total_amount, currency, bill_status, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, generated_date`,
		b.TenantID, b.PeriodStart, b.PeriodEnd, b.StartReadingID, b.EndReadingID,
		b.UnitsConsumed, b.RatePerUnit, b.TotalAmount, b.Currency, string(b.Status), b.DueDate,
	).Scan(&b.ID, &b.GeneratedAt)
	if err != nil {
		return storageErr("billRepo.Create", err)
	}

	return nil
}

func (r *BillRepo) GetByID(ctx context.Context, id int64) (*domain.Bill, error) {
	b, err := scanBill(r.db.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("billRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("billRepo.GetByID", err)
	}

	return b, nil
}

func (r *BillRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Bill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+billColumns+`
		 FROM bills WHERE tenant_id = $1
		 ORDER BY generated_date DESC, id DESC`,
		tenantID,
	)
	if err != nil {
		return nil, storageErr("billRepo.ListByTenant", err)
	}

	return collectBills("billRepo.ListByTenant", rows)
}

func (r *BillRepo) ListOutstanding(ctx context.Context) ([]*domain.Bill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+billColumns+`
		 FROM bills WHERE bill_status <> $1
		 ORDER BY due_date ASC, id ASC`,
		string(domain.BillStatusPaid),
	)
	if err != nil {
		return nil, storageErr("billRepo.ListOutstanding", err)
	}

	return collectBills("billRepo.ListOutstanding", rows)
}

func (r *BillRepo) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bills SET bill_status = $1, paid_date = $2 WHERE id = $3`,
		string(domain.BillStatusPaid), paidAt, id,
	)
	if err != nil {
		return storageErr("billRepo.MarkPaid", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("billRepo.MarkPaid: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BillRepo) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bills WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, storageErr("billRepo.DeleteByTenant", err)
	}

	return tag.RowsAffected(), nil
}
