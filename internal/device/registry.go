package device

import (
	"fmt"
	"sync"
	"time"
)

// Publisher receives a notification for every committed device mutation.
// Publish must not block; the registry calls it while holding its lock so
// that per-device notification order matches commit order.
type Publisher interface {
	Publish(Update)
}

// Registry is the authoritative store of device records. A single mutex
// serializes all mutations, so concurrent toggles from different sessions
// are totally ordered per device and never lose an update.
type Registry struct {
	mu        sync.Mutex
	devices   map[string]*Device
	order     []string
	publisher Publisher
}

// NewRegistry creates a registry seeded from the catalog. The device set is
// fixed for the process lifetime; every device starts off with no recorded
// update time. The publisher may be nil.
func NewRegistry(catalog []Device, publisher Publisher) *Registry {
	r := &Registry{
		devices:   make(map[string]*Device, len(catalog)),
		order:     make([]string, 0, len(catalog)),
		publisher: publisher,
	}

	for _, d := range catalog {
		d := d
		d.State = false
		d.LastUpdated = nil
		r.devices[d.ID] = &d
		r.order = append(r.order, d.ID)
	}

	return r
}

// Get returns a snapshot of one device.
func (r *Registry) Get(id string) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return Device{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return *d, nil
}

// List returns a point-in-time snapshot of all devices in catalog order.
func (r *Registry) List() []Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Device, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.devices[id])
	}
	return out
}

// ByOrdinal returns the n-th device in catalog order, 1-based. This is the
// mapping gesture selection labels use: one finger selects the first device.
func (r *Registry) ByOrdinal(n int) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n < 1 || n > len(r.order) {
		return Device{}, fmt.Errorf("ordinal %d: %w", n, ErrNotFound)
	}
	return *r.devices[r.order[n-1]], nil
}

// Len returns the number of devices in the registry.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Toggle flips the device state and returns the new snapshot.
func (r *Registry) Toggle(id string) (Device, error) {
	return r.mutate(id, func(d *Device) {
		d.State = !d.State
	})
}

// SetState sets the device state explicitly and returns the new snapshot.
func (r *Registry) SetState(id string, state bool) (Device, error) {
	return r.mutate(id, func(d *Device) {
		d.State = state
	})
}

// mutate applies an atomic read-modify-write to one device. The update
// notification is published before the lock is released, which pins the
// per-device broadcast order to the commit order. Unknown ids mutate
// nothing and publish nothing.
func (r *Registry) mutate(id string, fn func(*Device)) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return Device{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	fn(d)
	now := time.Now()
	d.LastUpdated = &now

	snapshot := *d
	if r.publisher != nil {
		r.publisher.Publish(Update{DeviceID: id, Device: snapshot})
	}
	return snapshot, nil
}
