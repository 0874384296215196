package domain

import "context"

// Repositories groups the per-entity repositories sharing one connection
// or transaction.
type Repositories interface {
	Tenants() TenantRepository
	Readings() ReadingRepository
	Bills() BillRepository
	Settings() SettingRepository
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(Repositories) error) error
}
