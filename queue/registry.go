package queue

import (
	"sync"
)

// Adapter exposes one queue's state to the admin dashboard.
type Adapter interface {
	// QueueName returns the stable identity of the underlying queue.
	QueueName() string
	// Snapshot returns the queue's current dashboard view.
	Snapshot() AdapterSnapshot
}

// AdapterSnapshot is the dashboard view of a single queue.
type AdapterSnapshot struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Submitted   int64  `json:"submitted"`
	Completed   int64  `json:"completed"`
	Failed      int64  `json:"failed"`
	Redelivered int64  `json:"redelivered"`
}

// DashboardRegistry holds the deduplicated set of queue adapters backing
// the admin dashboard. It is created once at composition time and passed to
// each Queue constructor; registration is additive for the life of the
// process and there is no teardown path.
type DashboardRegistry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
}

// NewDashboardRegistry creates an empty registry.
func NewDashboardRegistry() *DashboardRegistry {
	return &DashboardRegistry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter to the registry. Registration is deduplicated by
// queue name: repeated Queue construction over the same underlying queue
// keeps the first adapter and must not produce duplicate dashboard panels.
func (r *DashboardRegistry) Register(adapter Adapter) {
	if adapter == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.QueueName()
	if _, exists := r.adapters[name]; exists {
		return
	}

	r.adapters[name] = adapter
	r.order = append(r.order, name)
}

// Adapters returns the registered adapters in registration order.
func (r *DashboardRegistry) Adapters() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// Snapshots returns the dashboard view of every registered queue.
func (r *DashboardRegistry) Snapshots() []AdapterSnapshot {
	adapters := r.Adapters()

	out := make([]AdapterSnapshot, 0, len(adapters))
	for _, adapter := range adapters {
		out = append(out, adapter.Snapshot())
	}
	return out
}

// Len returns the number of registered adapters.
func (r *DashboardRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}
