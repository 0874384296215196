package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/aquabill/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so every repository can
// run either standalone or inside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool     *pgxpool.Pool
	tenants  *TenantRepo
	readings *ReadingRepo
	bills    *BillRepo
	settings *SettingRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return newStore(pool), nil
}

func newStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		tenants:  NewTenantRepo(pool),
		readings: NewReadingRepo(pool),
		bills:    NewBillRepo(pool),
		settings: NewSettingRepo(pool),
	}
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping is the connectivity check used by health checks and the CLI.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("postgres.Ping: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func (s *Store) Tenants() domain.TenantRepository   { return s.tenants }
func (s *Store) Readings() domain.ReadingRepository { return s.readings }
func (s *Store) Bills() domain.BillRepository       { return s.bills }
func (s *Store) Settings() domain.SettingRepository { return s.settings }

// WithTx runs fn inside a single transaction. Any error returned by fn, or by
// commit, rolls the whole transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(domain.Repositories) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(txRepos{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("postgres.WithTx: %w", err)
	}
	return nil
}

type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) Tenants() domain.TenantRepository   { return NewTenantRepo(r.tx) }
func (r txRepos) Readings() domain.ReadingRepository { return NewReadingRepo(r.tx) }
func (r txRepos) Bills() domain.BillRepository       { return NewBillRepo(r.tx) }
func (r txRepos) Settings() domain.SettingRepository { return NewSettingRepo(r.tx) }

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// storageErr tags err as a storage failure while keeping the driver error
// inspectable.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
