package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/aquabill/internal/domain"
)

// FallbackRate is the per-unit rate used when no rate setting is stored.
var FallbackRate = decimal.RequireFromString("2.50") //nolint:gochecknoglobals // constant decimal

// FallbackCurrency is the currency used when no currency setting is stored.
const FallbackCurrency = "USD"

// DefaultDueDays is the grace period between bill generation and due date.
const DefaultDueDays = 30

// Store is the persistence surface the service needs.
// *postgres.Store satisfies this interface.
type Store interface {
	domain.Repositories
	domain.Transactor
}

// Options tunes billing behavior. Zero values fall back to the defaults,
// except DefaultRate, which applies whenever it is Valid (zero included).
type Options struct {
	DueDays         int
	DefaultRate     decimal.NullDecimal
	DefaultCurrency string
	// CheckRegression logs and publishes a warning when a new reading is
	// below the tenant's latest one. The reading is stored either way.
	CheckRegression bool
	Now             func() time.Time
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DueDays:         DefaultDueDays,
		DefaultRate:     decimal.NewNullDecimal(FallbackRate),
		DefaultCurrency: FallbackCurrency,
		CheckRegression: true,
	}
}

// Service orchestrates tenants, readings, bills and settings.
//
// No application-level locking is performed: concurrent callers rely on the
// database's own isolation. Only DeleteTenant spans several statements and it
// runs inside one transaction.
type Service struct {
	store  Store
	events EventPublisher
	opts   Options
	now    func() time.Time
}

// NewService creates a billing service. events may be nil to disable
// event publishing.
func NewService(store Store, events EventPublisher, opts Options) *Service {
	if opts.DueDays <= 0 {
		opts.DueDays = DefaultDueDays
	}
	if !opts.DefaultRate.Valid {
		opts.DefaultRate = decimal.NewNullDecimal(FallbackRate)
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = FallbackCurrency
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:  store,
		events: events,
		opts:   opts,
		now:    now,
	}
}

// ---------------------------------------------------------------------------
// Tenants
// ---------------------------------------------------------------------------

// NewTenant carries the fields accepted when adding a tenant.
type NewTenant struct {
	TenantID        string
	Name            string
	ApartmentNumber string
	Phone           *string
	Email           *string
}

// AddTenant creates a tenant. It fails with domain.ErrDuplicateKey when the
// tenant id is already taken, including by a deactivated tenant.
func (s *Service) AddTenant(ctx context.Context, in NewTenant) (*domain.Tenant, error) {
	if strings.TrimSpace(in.TenantID) == "" || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ApartmentNumber) == "" {
		return nil, fmt.Errorf("billing.AddTenant: tenant id, name and apartment are required: %w", domain.ErrValidation)
	}

	exists, err := s.store.Tenants().Exists(ctx, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("billing.AddTenant: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("billing.AddTenant: tenant %q: %w", in.TenantID, domain.ErrDuplicateKey)
	}

	t := &domain.Tenant{
		TenantID:        in.TenantID,
		Name:            in.Name,
		ApartmentNumber: in.ApartmentNumber,
		Phone:           in.Phone,
		Email:           in.Email,
		IsActive:        true,
	}
	if err = s.store.Tenants().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("billing.AddTenant: %w", err)
	}

	log.Info().Str("tenant_id", t.TenantID).Msg("tenant created")
	s.emit(ctx, Event{Type: EventTenantCreated, TenantID: t.TenantID})

	return t, nil
}

// GetTenant returns the active tenant with the given id.
func (s *Service) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	t, err := s.store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("billing.GetTenant: %w", err)
	}
	return t, nil
}

// ListTenants returns tenants ordered by apartment number.
func (s *Service) ListTenants(ctx context.Context, activeOnly bool) ([]*domain.Tenant, error) {
	tenants, err := s.store.Tenants().List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("billing.ListTenants: %w", err)
	}
	return tenants, nil
}

// UpdateTenant rewrites the mutable fields of t, keyed by t.TenantID.
func (s *Service) UpdateTenant(ctx context.Context, t *domain.Tenant) error {
	if err := s.store.Tenants().Update(ctx, t); err != nil {
		return fmt.Errorf("billing.UpdateTenant: %w", err)
	}

	log.Info().Str("tenant_id", t.TenantID).Msg("tenant updated")
	return nil
}

// DeactivateTenant soft-deletes a tenant, keeping its history.
func (s *Service) DeactivateTenant(ctx context.Context, tenantID string) error {
	if err := s.store.Tenants().Delete(ctx, tenantID, domain.DeleteSoft); err != nil {
		return fmt.Errorf("billing.DeactivateTenant: %w", err)
	}

	log.Info().Str("tenant_id", tenantID).Msg("tenant deactivated")
	s.emit(ctx, Event{Type: EventTenantDeactivated, TenantID: tenantID})
	return nil
}

// CascadeResult reports what a hard tenant delete removed.
type CascadeResult struct {
	TenantID        string `json:"tenant_id"`
	BillsDeleted    int64  `json:"bills_deleted"`
	ReadingsDeleted int64  `json:"readings_deleted"`
}

// DeleteTenant permanently removes a tenant with all of its bills and
// readings. Bills go first, then readings, then the tenant row, all in one
// transaction: on any failure nothing is removed.
func (s *Service) DeleteTenant(ctx context.Context, tenantID string) (*CascadeResult, error) {
	exists, err := s.store.Tenants().Exists(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("billing.DeleteTenant: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("billing.DeleteTenant: tenant %q: %w", tenantID, domain.ErrNotFound)
	}

	res := &CascadeResult{TenantID: tenantID}
	err = s.store.WithTx(ctx, func(repos domain.Repositories) error {
		var txErr error
		res.BillsDeleted, txErr = repos.Bills().DeleteByTenant(ctx, tenantID)
		if txErr != nil {
			return txErr
		}
		res.ReadingsDeleted, txErr = repos.Readings().DeleteByTenant(ctx, tenantID)
		if txErr != nil {
			return txErr
		}
		return repos.Tenants().Delete(ctx, tenantID, domain.DeleteHard)
	})
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("tenant cascade delete rolled back")
		return nil, fmt.Errorf("billing.DeleteTenant: %w", err)
	}

	log.Info().
		Str("tenant_id", tenantID).
		Int64("bills", res.BillsDeleted).
		Int64("readings", res.ReadingsDeleted).
		Msg("tenant deleted")
	s.emit(ctx, Event{Type: EventTenantDeleted, TenantID: tenantID, Data: res})

	return res, nil
}

// ---------------------------------------------------------------------------
// Readings
// ---------------------------------------------------------------------------

// NewReading carries the fields accepted when recording a meter reading.
// A zero ReadingDate means now.
type NewReading struct {
	TenantID    string
	Units       decimal.Decimal
	ReadingDate time.Time
	Notes       string
	CreatedBy   string
}

// AddWaterReading appends a meter reading for an active tenant. A value below
// the tenant's latest reading is reported as a warning and stored anyway,
// since meters get replaced or reset.
func (s *Service) AddWaterReading(ctx context.Context, in NewReading) (*domain.WaterReading, error) {
	if err := domain.ValidateUnits(in.Units); err != nil {
		return nil, fmt.Errorf("billing.AddWaterReading: %w", err)
	}

	if _, err := s.store.Tenants().GetByID(ctx, in.TenantID); err != nil {
		return nil, fmt.Errorf("billing.AddWaterReading: %w", err)
	}

	readingDate := in.ReadingDate
	if readingDate.IsZero() {
		readingDate = s.now()
	}

	var previous *domain.WaterReading
	if s.opts.CheckRegression {
		latest, err := s.store.Readings().Latest(ctx, in.TenantID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("billing.AddWaterReading: %w", err)
		case in.Units.LessThan(latest.ReadingUnits):
			previous = latest
		}
	}

	wr := &domain.WaterReading{
		TenantID:     in.TenantID,
		ReadingUnits: in.Units,
		ReadingDate:  readingDate,
		Notes:        optional(in.Notes),
		CreatedBy:    optional(in.CreatedBy),
	}
	if err := s.store.Readings().Create(ctx, wr); err != nil {
		return nil, fmt.Errorf("billing.AddWaterReading: %w", err)
	}

	log.Info().Str("tenant_id", wr.TenantID).Int64("reading_id", wr.ID).Str("units", wr.ReadingUnits.String()).Msg("reading recorded")
	s.emit(ctx, Event{Type: EventReadingRecorded, TenantID: wr.TenantID, ReadingID: wr.ID})

	if previous != nil {
		log.Warn().
			Str("tenant_id", wr.TenantID).
			Str("previous_units", previous.ReadingUnits.String()).
			Str("new_units", wr.ReadingUnits.String()).
			Msg("meter reading lower than latest reading")
		s.emit(ctx, Event{
			Type:      EventReadingRegression,
			TenantID:  wr.TenantID,
			ReadingID: wr.ID,
			Data: RegressionDetail{
				PreviousReadingID: previous.ID,
				PreviousUnits:     previous.ReadingUnits.String(),
				NewUnits:          wr.ReadingUnits.String(),
			},
		})
	}

	return wr, nil
}

// ListReadings returns a tenant's readings newest first. limit <= 0 returns all.
func (s *Service) ListReadings(ctx context.Context, tenantID string, limit int) ([]*domain.WaterReading, error) {
	readings, err := s.store.Readings().ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("billing.ListReadings: %w", err)
	}
	return readings, nil
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Setting returns the stored value for key.
func (s *Service) Setting(ctx context.Context, key string) (string, error) {
	v, err := s.store.Settings().Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("billing.Setting: %w", err)
	}
	return v, nil
}

// SetSetting upserts key. The default rate must be a non-negative decimal.
func (s *Service) SetSetting(ctx context.Context, key, value, description string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("billing.SetSetting: empty key: %w", domain.ErrValidation)
	}
	switch key {
	case domain.SettingDefaultRate:
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("billing.SetSetting: rate %q: %w", value, domain.ErrValidation)
		}
		if err = domain.ValidateRate(rate); err != nil {
			return fmt.Errorf("billing.SetSetting: %w", err)
		}
	case domain.SettingDefaultCurrency:
		if err := domain.ValidateCurrency(value); err != nil {
			return fmt.Errorf("billing.SetSetting: %w", err)
		}
	}

	if err := s.store.Settings().Set(ctx, key, value, description); err != nil {
		return fmt.Errorf("billing.SetSetting: %w", err)
	}

	log.Info().Str("key", key).Str("value", value).Msg("setting updated")
	return nil
}

// Settings returns every stored setting.
func (s *Service) Settings(ctx context.Context) (map[string]string, error) {
	all, err := s.store.Settings().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("billing.Settings: %w", err)
	}
	return all, nil
}

// rate resolves the per-unit rate and currency in effect now.
func (s *Service) rate(ctx context.Context) (decimal.Decimal, string, error) {
	rate := s.opts.DefaultRate.Decimal
	raw, err := s.store.Settings().Get(ctx, domain.SettingDefaultRate)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return decimal.Decimal{}, "", err
	default:
		parsed, parseErr := decimal.NewFromString(strings.TrimSpace(raw))
		if parseErr == nil {
			parseErr = domain.ValidateRate(parsed)
		}
		if parseErr != nil {
			log.Warn().Err(parseErr).Str("value", raw).Msg("unusable default_rate_per_unit, using fallback")
		} else {
			rate = parsed
		}
	}

	currency := s.opts.DefaultCurrency
	raw, err = s.store.Settings().Get(ctx, domain.SettingDefaultCurrency)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return decimal.Decimal{}, "", err
	default:
		code := strings.TrimSpace(raw)
		if cErr := domain.ValidateCurrency(code); cErr != nil {
			log.Warn().Err(cErr).Str("value", raw).Msg("unusable default_currency, using fallback")
		} else {
			currency = code
		}
	}

	return rate, currency, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
