package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gosuda/aquabill/internal/domain"
)

const tenantColumns = `id, tenant_id, name, apartment_number, phone, email, is_active, created_date, updated_date`

type TenantRepo struct {
	db dbtx
}

func NewTenantRepo(db dbtx) *TenantRepo {
	return &TenantRepo{db: db}
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.ApartmentNumber, &t.Phone, &t.Email,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tenants (tenant_id, name, apartment_number, phone, email, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_date, updated_date`,
		t.TenantID, t.Name, t.ApartmentNumber, t.Phone, t.Email, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("tenantRepo.Create: tenant %q: %w", t.TenantID, domain.ErrDuplicateKey)
	}
	if err != nil {
		return storageErr("tenantRepo.Create", err)
	}

	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	t, err := scanTenant(r.db.QueryRow(ctx,
		`SELECT `+tenantColumns+`
		 FROM tenants WHERE tenant_id = $1 AND is_active`,
		tenantID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("tenantRepo.GetByID", err)
	}

	return t, nil
}

func (r *TenantRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Tenant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tenantColumns+`
		 FROM tenants WHERE is_active OR NOT $1
		 ORDER BY apartment_number`,
		activeOnly,
	)
	if err != nil {
		return nil, storageErr("tenantRepo.List", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, scanErr := scanTenant(rows)
		if scanErr != nil {
			return nil, storageErr("tenantRepo.List: scan", scanErr)
		}

		tenants = append(tenants, t)
	}
	err = rows.Err()
	if err != nil {
		return nil, storageErr("tenantRepo.List: rows", err)
	}

	return tenants, nil
}

func (r *TenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	err := r.db.QueryRow(ctx,
		`UPDATE tenants
		 SET name = $1, apartment_number = $2, phone = $3, email = $4, is_active = $5, updated_date = now()
		 WHERE tenant_id = $6
		 RETURNING id, created_date, updated_date`,
		t.Name, t.ApartmentNumber, t.Phone, t.Email, t.IsActive, t.TenantID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("tenantRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return storageErr("tenantRepo.Update", err)
	}

	return nil
}

func (r *TenantRepo) Delete(ctx context.Context, tenantID string, mode domain.DeleteMode) error {
	var query string
	switch mode {
	case domain.DeleteSoft:
		query = `UPDATE tenants SET is_active = FALSE, updated_date = now() WHERE tenant_id = $1`
	case domain.DeleteHard:
		query = `DELETE FROM tenants WHERE tenant_id = $1`
	default:
		return fmt.Errorf("tenantRepo.Delete: %s: %w", mode, domain.ErrValidation)
	}

	tag, err := r.db.Exec(ctx, query, tenantID)
	if err != nil {
		return storageErr("tenantRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenantRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TenantRepo) Exists(ctx context.Context, tenantID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE tenant_id = $1)`,
		tenantID,
	).Scan(&exists)
	if err != nil {
		return false, storageErr("tenantRepo.Exists", err)
	}

	return exists, nil
}
