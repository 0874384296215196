package ws_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/aquabill/internal/api/ws"
)

// ---------------------------------------------------------------------------
// Mock Subscriber
// ---------------------------------------------------------------------------

type mockSubscriber struct {
	mu       sync.Mutex
	channels []string
	messages chan []byte
	err      error
}

func (m *mockSubscriber) Subscribe(_ context.Context, channel string) (<-chan []byte, func(), error) {
	m.mu.Lock()
	m.channels = append(m.channels, channel)
	m.mu.Unlock()
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.messages, func() {}, nil
}

func (m *mockSubscriber) subscribed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.channels...)
}

func newHubServer(t *testing.T, sub *mockSubscriber) *httptest.Server {
	t.Helper()
	hub := ws.NewHub(sub)
	r := chi.NewRouter()
	r.Get("/ws/billing", hub.ServeBilling)
	r.Get("/ws/tenants/{tenantID}", hub.ServeTenant)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestServeTenant(t *testing.T) {
	t.Parallel()

	sub := &mockSubscriber{messages: make(chan []byte, 1)}
	srv := newHubServer(t, sub)
	conn := dial(t, srv, "/ws/tenants/T1")

	sub.messages <- []byte(`{"type":"bill.generated","tenant_id":"T1"}`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)
	assert.JSONEq(t, `{"type":"bill.generated","tenant_id":"T1"}`, string(data))
	assert.Equal(t, []string{"tenant:T1"}, sub.subscribed())
}

func TestServeBilling(t *testing.T) {
	t.Parallel()

	sub := &mockSubscriber{messages: make(chan []byte)}
	srv := newHubServer(t, sub)
	conn := dial(t, srv, "/ws/billing")

	close(sub.messages)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
	assert.Equal(t, []string{"billing"}, sub.subscribed())
}

func TestServeSubscribeFailure(t *testing.T) {
	t.Parallel()

	sub := &mockSubscriber{err: errors.New("redis down")}
	srv := newHubServer(t, sub)
	conn := dial(t, srv, "/ws/billing")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusInternalError, websocket.CloseStatus(err))
}
