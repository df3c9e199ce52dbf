package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"propertyhub.app/pkg/logger"
)

type fakeAdapter struct {
	name string
}

func (a *fakeAdapter) QueueName() string { return a.name }
func (a *fakeAdapter) Snapshot() AdapterSnapshot {
	return AdapterSnapshot{Name: a.name}
}

func TestDashboardRegistry_Register(t *testing.T) {
	t.Run("DedupByQueueName", func(t *testing.T) {
		registry := NewDashboardRegistry()

		first := &fakeAdapter{name: "AUTH_EMAIL_QUEUE"}
		registry.Register(first)
		registry.Register(&fakeAdapter{name: "AUTH_EMAIL_QUEUE"})
		registry.Register(&fakeAdapter{name: "AUTH_EMAIL_QUEUE"})

		assert.Equal(t, 1, registry.Len())
		// The first registration wins.
		require.Len(t, registry.Adapters(), 1)
		assert.Same(t, Adapter(first), registry.Adapters()[0])
	})

	t.Run("DistinctNamesCoexist", func(t *testing.T) {
		registry := NewDashboardRegistry()
		registry.Register(&fakeAdapter{name: "AUTH_EMAIL_QUEUE"})
		registry.Register(&fakeAdapter{name: "INVITE_EMAIL_QUEUE"})

		assert.Equal(t, 2, registry.Len())
	})

	t.Run("RegistrationOrderPreserved", func(t *testing.T) {
		registry := NewDashboardRegistry()
		registry.Register(&fakeAdapter{name: "c"})
		registry.Register(&fakeAdapter{name: "a"})
		registry.Register(&fakeAdapter{name: "b"})

		snapshots := registry.Snapshots()
		require.Len(t, snapshots, 3)
		assert.Equal(t, "c", snapshots[0].Name)
		assert.Equal(t, "a", snapshots[1].Name)
		assert.Equal(t, "b", snapshots[2].Name)
	})

	t.Run("NilAdapterIgnored", func(t *testing.T) {
		registry := NewDashboardRegistry()
		registry.Register(nil)
		assert.Equal(t, 0, registry.Len())
	})
}

func TestDashboardRegistry_QueueConstructionDedup(t *testing.T) {
	registry := NewDashboardRegistry()
	log := logger.New()
	cfg := testQueueConfig()

	// One instance per controller is a realistic construction pattern;
	// the dashboard must still show a single panel per queue.
	New(nil, cfg, AuthEmailQueue, registry, log)
	New(nil, cfg, AuthEmailQueue, registry, log)
	New(nil, cfg, AuthEmailQueue, registry, log)

	assert.Equal(t, 1, registry.Len())

	New(nil, cfg, InviteEmailQueue, registry, log)
	assert.Equal(t, 2, registry.Len())
}
