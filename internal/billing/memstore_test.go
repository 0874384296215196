package billing_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gosuda/aquabill/internal/domain"
)

// ---------------------------------------------------------------------------
// In-memory store implementing billing.Store
// ---------------------------------------------------------------------------

// memStore keeps every table in maps. WithTx snapshots the tables and
// restores them when fn fails. The fail* hooks inject errors per operation.
type memStore struct {
	mu sync.Mutex

	tenants  map[string]*domain.Tenant
	readings map[int64]*domain.WaterReading
	bills    map[int64]*domain.Bill
	settings map[string]string
	nextID   int64
	clock    time.Time

	failBillDelete    func() error
	failReadingDelete func() error
	failTenantDelete  func() error
	failSettingGet    func(key string) error
}

func newMemStore() *memStore {
	return &memStore{
		tenants:  make(map[string]*domain.Tenant),
		readings: make(map[int64]*domain.WaterReading),
		bills:    make(map[int64]*domain.Bill),
		settings: map[string]string{
			domain.SettingDefaultRate:     "2.50",
			domain.SettingDefaultCurrency: "USD",
		},
		clock: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) Tenants() domain.TenantRepository   { return memTenants{m} }
func (m *memStore) Readings() domain.ReadingRepository { return memReadings{m} }
func (m *memStore) Bills() domain.BillRepository       { return memBills{m} }
func (m *memStore) Settings() domain.SettingRepository { return memSettings{m} }

func (m *memStore) WithTx(_ context.Context, fn func(domain.Repositories) error) error {
	m.mu.Lock()
	tenants := cloneMap(m.tenants)
	readings := cloneMap(m.readings)
	bills := cloneMap(m.bills)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.tenants, m.readings, m.bills = tenants, readings, bills
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) countReadings(tenantID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.readings {
		if r.TenantID == tenantID {
			n++
		}
	}
	return n
}

func (m *memStore) countBills(tenantID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bills {
		if b.TenantID == tenantID {
			n++
		}
	}
	return n
}

func cloneMap[K comparable, V any](src map[K]*V) map[K]*V {
	dst := make(map[K]*V, len(src))
	for k, v := range src {
		cp := *v
		dst[k] = &cp
	}
	return dst
}

// --- tenants ---

type memTenants struct{ m *memStore }

func (r memTenants) Create(_ context.Context, t *domain.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tenants[t.TenantID]; ok {
		return fmt.Errorf("memTenants.Create: %w", domain.ErrDuplicateKey)
	}
	t.ID = r.m.id()
	t.CreatedAt = r.m.clock
	t.UpdatedAt = r.m.clock
	cp := *t
	r.m.tenants[t.TenantID] = &cp
	return nil
}

func (r memTenants) GetByID(_ context.Context, tenantID string) (*domain.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tenants[tenantID]
	if !ok || !t.IsActive {
		return nil, fmt.Errorf("memTenants.GetByID: %w", domain.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r memTenants) List(_ context.Context, activeOnly bool) ([]*domain.Tenant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*domain.Tenant, 0, len(r.m.tenants))
	for _, t := range r.m.tenants {
		if activeOnly && !t.IsActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApartmentNumber < out[j].ApartmentNumber })
	return out, nil
}

func (r memTenants) Update(_ context.Context, t *domain.Tenant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.tenants[t.TenantID]
	if !ok {
		return fmt.Errorf("memTenants.Update: %w", domain.ErrNotFound)
	}
	t.ID = cur.ID
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = r.m.clock.Add(time.Minute)
	cp := *t
	r.m.tenants[t.TenantID] = &cp
	return nil
}

func (r memTenants) Delete(_ context.Context, tenantID string, mode domain.DeleteMode) error {
	if mode == domain.DeleteHard && r.m.failTenantDelete != nil {
		if err := r.m.failTenantDelete(); err != nil {
			return err
		}
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tenants[tenantID]
	if !ok {
		return fmt.Errorf("memTenants.Delete: %w", domain.ErrNotFound)
	}
	if mode == domain.DeleteSoft {
		t.IsActive = false
		return nil
	}
	delete(r.m.tenants, tenantID)
	return nil
}

func (r memTenants) Exists(_ context.Context, tenantID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.tenants[tenantID]
	return ok, nil
}

// --- readings ---

type memReadings struct{ m *memStore }

func (r memReadings) Create(_ context.Context, wr *domain.WaterReading) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	wr.ID = r.m.id()
	wr.RecordedDate = r.m.clock
	cp := *wr
	r.m.readings[wr.ID] = &cp
	return nil
}

func (r memReadings) sorted(tenantID string) []*domain.WaterReading {
	out := make([]*domain.WaterReading, 0)
	for _, wr := range r.m.readings {
		if wr.TenantID == tenantID {
			cp := *wr
			out = append(out, &cp)
		}
	}
	// oldest first, id breaks ties
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReadingDate.Equal(out[j].ReadingDate) {
			return out[i].ReadingDate.Before(out[j].ReadingDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r memReadings) ListByTenant(_ context.Context, tenantID string, limit int) ([]*domain.WaterReading, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	asc := r.sorted(tenantID)
	out := make([]*domain.WaterReading, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		out = append(out, asc[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memReadings) Latest(ctx context.Context, tenantID string) (*domain.WaterReading, error) {
	list, _ := r.ListByTenant(ctx, tenantID, 1)
	if len(list) == 0 {
		return nil, fmt.Errorf("memReadings.Latest: %w", domain.ErrNotFound)
	}
	return list[0], nil
}

func (r memReadings) ListRange(_ context.Context, tenantID string, start, end time.Time) ([]*domain.WaterReading, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*domain.WaterReading, 0)
	for _, wr := range r.sorted(tenantID) {
		if wr.ReadingDate.Before(start) || wr.ReadingDate.After(end) {
			continue
		}
		out = append(out, wr)
	}
	return out, nil
}

func (r memReadings) DeleteByTenant(_ context.Context, tenantID string) (int64, error) {
	if r.m.failReadingDelete != nil {
		if err := r.m.failReadingDelete(); err != nil {
			return 0, err
		}
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, wr := range r.m.readings {
		if wr.TenantID == tenantID {
			delete(r.m.readings, id)
			n++
		}
	}
	return n, nil
}

// --- bills ---

type memBills struct{ m *memStore }

func (r memBills) Create(_ context.Context, b *domain.Bill) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b.ID = r.m.id()
	b.GeneratedAt = r.m.clock
	cp := *b
	r.m.bills[b.ID] = &cp
	return nil
}

func (r memBills) GetByID(_ context.Context, id int64) (*domain.Bill, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bills[id]
	if !ok {
		return nil, fmt.Errorf("memBills.GetByID: %w", domain.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r memBills) ListByTenant(_ context.Context, tenantID string) ([]*domain.Bill, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*domain.Bill, 0)
	for _, b := range r.m.bills {
		if b.TenantID == tenantID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memBills) ListOutstanding(_ context.Context) ([]*domain.Bill, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*domain.Bill, 0)
	for _, b := range r.m.bills {
		if b.Outstanding() {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memBills) MarkPaid(_ context.Context, id int64, paidAt time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bills[id]
	if !ok {
		return fmt.Errorf("memBills.MarkPaid: %w", domain.ErrNotFound)
	}
	b.Status = domain.BillStatusPaid
	b.PaidAt = &paidAt
	return nil
}

func (r memBills) DeleteByTenant(_ context.Context, tenantID string) (int64, error) {
	if r.m.failBillDelete != nil {
		if err := r.m.failBillDelete(); err != nil {
			return 0, err
		}
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, b := range r.m.bills {
		if b.TenantID == tenantID {
			delete(r.m.bills, id)
			n++
		}
	}
	return n, nil
}

// --- settings ---

type memSettings struct{ m *memStore }

func (r memSettings) Get(_ context.Context, key string) (string, error) {
	if r.m.failSettingGet != nil {
		if err := r.m.failSettingGet(key); err != nil {
			return "", err
		}
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.settings[key]
	if !ok {
		return "", fmt.Errorf("memSettings.Get: %w", domain.ErrNotFound)
	}
	return v, nil
}

func (r memSettings) Set(_ context.Context, key, value, _ string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.settings[key] = value
	return nil
}

func (r memSettings) GetAll(_ context.Context) (map[string]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[string]string, len(r.m.settings))
	for k, v := range r.m.settings {
		out[k] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Mock EventPublisher
// ---------------------------------------------------------------------------

type mockPublisher struct {
	mu         sync.Mutex
	publishErr error
	published  []any
	channels   [][]string
}

func (p *mockPublisher) PublishJSON(_ context.Context, v any, channels ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, v)
	p.channels = append(p.channels, channels)
	return p.publishErr
}
