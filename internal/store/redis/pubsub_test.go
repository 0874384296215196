package redis_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	redisstore "github.com/gosuda/aquabill/internal/store/redis"
)

func TestTenantChannel(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "tenant:T001", redisstore.TenantChannel("T001"))
	})

	t.Run("empty id", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "tenant:", redisstore.TenantChannel(""))
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.TenantChannel("A-12")
		assert.True(t, strings.HasPrefix(got, "tenant:"), "expected prefix 'tenant:', got %q", got)
	})

	t.Run("different inputs produce different outputs", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, redisstore.TenantChannel("T001"), redisstore.TenantChannel("T002"))
	})

	t.Run("distinct from billing channel", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, redisstore.BillingChannel, redisstore.TenantChannel("billing"))
	})
}

// ---------------------------------------------------------------------------
// PubSub against a real Redis
// ---------------------------------------------------------------------------

func testPubSub(t *testing.T) *redisstore.PubSub {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	ps, err := redisstore.New(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })

	return ps
}

func TestPublishJSON_FansOutToChannels(t *testing.T) {
	t.Parallel()

	ps := testPubSub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, ps.Ping(ctx))

	billingMsgs, stopBilling, err := ps.Subscribe(ctx, redisstore.BillingChannel)
	require.NoError(t, err)
	defer stopBilling()

	tenantMsgs, stopTenant, err := ps.Subscribe(ctx, redisstore.TenantChannel("T001"))
	require.NoError(t, err)
	defer stopTenant()

	event := map[string]string{"type": "bill.generated", "tenant_id": "T001"}
	require.NoError(t, ps.PublishJSON(ctx, event, redisstore.BillingChannel, redisstore.TenantChannel("T001")))

	for _, ch := range []<-chan []byte{billingMsgs, tenantMsgs} {
		select {
		case payload := <-ch:
			var got map[string]string
			require.NoError(t, json.Unmarshal(payload, &got))
			assert.Equal(t, event, got)
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublishJSON_NoChannels(t *testing.T) {
	t.Parallel()

	ps := testPubSub(t)
	assert.NoError(t, ps.PublishJSON(context.Background(), map[string]string{"x": "y"}))
}

func TestPublishJSON_Unmarshalable(t *testing.T) {
	t.Parallel()

	ps := testPubSub(t)
	err := ps.PublishJSON(context.Background(), make(chan int), redisstore.BillingChannel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal")
}
