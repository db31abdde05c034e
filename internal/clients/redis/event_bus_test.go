package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lgrosz/climb-catalog/internal/events"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

func TestNewEventBusRequiresAddr(t *testing.T) {
	log, err := logger.New("test")
	require.NoError(t, err)

	_, err = NewEventBus(log, Config{})
	require.ErrorContains(t, err, "REDIS_ADDR")
}

func TestEventBusRoundTrip(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	log, err := logger.New("test")
	require.NoError(t, err)

	bus, err := NewEventBus(log, Config{Addr: addr, Channel: "climb-catalog.test." + t.Name()})
	require.NoError(t, err)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan events.Event, 2)
	require.NoError(t, bus.StartForwarder(ctx, func(ev events.Event) { got <- ev }))

	require.NoError(t, bus.Publish(ctx, []events.Event{
		{ID: 1, EntityKind: "area", EntityID: 5, Action: "created"},
		{ID: 2, EntityKind: "area", EntityID: 5, Action: "renamed"},
	}))

	for _, want := range []int64{1, 2} {
		select {
		case ev := <-got:
			require.Equal(t, want, ev.ID)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for event %d", want)
		}
	}
}
