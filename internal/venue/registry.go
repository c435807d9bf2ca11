package venue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
)

// Registry maps venue identity to adapter instance and keeps the last
// observed descriptor per venue for the reporting surface.
type Registry struct {
	mu          sync.RWMutex
	adapters    map[string]Adapter
	descriptors map[string]model.VenueDescriptor
	now         func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		adapters:    make(map[string]Adapter),
		descriptors: make(map[string]model.VenueDescriptor),
		now:         time.Now,
	}
}

func (r *Registry) Register(a Adapter) {
	if a == nil {
		return
	}
	name, version := a.Identify()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = a
	r.descriptors[name] = model.VenueDescriptor{
		Name:         name,
		Version:      version,
		TotalManaged: decimal.Zero,
		ObservedAt:   r.now().UTC(),
	}
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptor returns the last observed snapshot for a venue.
func (r *Registry) Descriptor(name string) (model.VenueDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	return d, ok
}

func (r *Registry) Descriptors() []model.VenueDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.VenueDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpdateDescriptor replaces the stored snapshot; used by the monitor
// and the telemetry stream.
func (r *Registry) UpdateDescriptor(d model.VenueDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[d.Name]; !ok {
		return
	}
	if d.ObservedAt.IsZero() {
		d.ObservedAt = r.now().UTC()
	}
	r.descriptors[d.Name] = d
}

// Probe queries the live adapter and refreshes the stored descriptor.
func (r *Registry) Probe(ctx context.Context, name string) (model.VenueDescriptor, error) {
	adapter, ok := r.Get(name)
	if !ok {
		return model.VenueDescriptor{}, apperrors.Newf(apperrors.ErrNotFound, "venue %s not registered", name)
	}

	vName, version := adapter.Identify()
	d := model.VenueDescriptor{
		Name:       vName,
		Version:    version,
		Healthy:    adapter.IsHealthy(ctx),
		ObservedAt: r.now().UTC(),
	}
	if rate, err := adapter.CurrentYieldRate(ctx); err == nil {
		d.CurrentAPYBps = rate
	}
	if total, err := adapter.TotalManagedAssets(ctx); err == nil {
		d.TotalManaged = total
	} else {
		d.TotalManaged = decimal.Zero
	}

	r.UpdateDescriptor(d)
	return d, nil
}
