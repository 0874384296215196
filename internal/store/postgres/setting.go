package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gosuda/aquabill/internal/domain"
)

type SettingRepo struct {
	db dbtx
}

func NewSettingRepo(db dbtx) *SettingRepo {
	return &SettingRepo{db: db}
}

func (r *SettingRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx,
		`SELECT setting_value FROM system_settings WHERE setting_key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("settingRepo.Get: %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return "", storageErr("settingRepo.Get", err)
	}

	return value, nil
}

func (r *SettingRepo) Set(ctx context.Context, key, value, description string) error {
	var desc *string
	if description != "" {
		desc = &description
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO system_settings (setting_key, setting_value, description)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (setting_key) DO UPDATE
		 SET setting_value = EXCLUDED.setting_value,
		     description = COALESCE(EXCLUDED.description, system_settings.description),
		     updated_date = now()`,
		key, value, desc,
	)
	if err != nil {
		return storageErr("settingRepo.Set", err)
	}

	return nil
}

func (r *SettingRepo) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT setting_key, setting_value FROM system_settings`)
	if err != nil {
		return nil, storageErr("settingRepo.GetAll", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return nil, storageErr("settingRepo.GetAll: scan", err)
		}
		settings[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("settingRepo.GetAll: rows", err)
	}

	return settings, nil
}
