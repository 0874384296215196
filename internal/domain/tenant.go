package domain

import (
	"context"
	"fmt"
	"time"
)

type Tenant struct {
	ID              int64     `json:"id"`
	TenantID        string    `json:"tenant_id"`
	Name            string    `json:"name"`
	ApartmentNumber string    `json:"apartment_number"`
	Phone           *string   `json:"phone,omitempty"`
	Email           *string   `json:"email,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_date"`
	UpdatedAt       time.Time `json:"updated_date"`
}

// DeleteMode selects how a tenant row is removed.
type DeleteMode int

const (
	// DeleteSoft clears the active flag and keeps the row.
	DeleteSoft DeleteMode = iota
	// DeleteHard removes the row permanently.
	DeleteHard
)

func (m DeleteMode) String() string {
	switch m {
	case DeleteSoft:
		return "soft"
	case DeleteHard:
		return "hard"
	default:
		return fmt.Sprintf("DeleteMode(%d)", int(m))
	}
}

// ParseDeleteMode maps "soft" and "hard" to their DeleteMode.
func ParseDeleteMode(s string) (DeleteMode, error) {
	switch s {
	case "soft":
		return DeleteSoft, nil
	case "hard":
		return DeleteHard, nil
	default:
		return 0, fmt.Errorf("delete mode %q: %w", s, ErrValidation)
	}
}

type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) error
	// GetByID returns the active tenant with the given external id.
	GetByID(ctx context.Context, tenantID string) (*Tenant, error)
	List(ctx context.Context, activeOnly bool) ([]*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Delete(ctx context.Context, tenantID string, mode DeleteMode) error
	// Exists reports whether any row, active or not, carries tenantID.
	Exists(ctx context.Context, tenantID string) (bool, error)
}
