package domain

import (
	"context"
	"time"
)

// Setting keys read by billing.
const (
	SettingDefaultRate     = "default_rate_per_unit"
	SettingDefaultCurrency = "default_currency"
)

type SystemSetting struct {
	Key         string    `json:"setting_key"`
	Value       string    `json:"setting_value"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_date"`
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	// Set upserts key. An empty description keeps the stored one.
	Set(ctx context.Context, key, value, description string) error
	GetAll(ctx context.Context) (map[string]string, error)
}
