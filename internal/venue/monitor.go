package venue

import (
	"context"
	"fmt"
	"time"

	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/logger"
	"github.com/rentyield/yieldgate/internal/pkg/metrics"
)

// SnapshotStore persists descriptor snapshots so the reporting surface
// survives restarts.
type SnapshotStore interface {
	SaveVenueSnapshot(ctx context.Context, d model.VenueDescriptor) error
}

// Monitor polls every registered venue on an interval, refreshing
// descriptors and fanning them out to the telemetry sink and the
// snapshot store.
type Monitor struct {
	registry *Registry
	sink     TelemetrySink
	store    SnapshotStore
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewMonitor(registry *Registry, sink TelemetrySink, store SnapshotStore, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		registry: registry,
		sink:     sink,
		store:    store,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *Monitor) Start() {
	go m.runLoop()
}

func (m *Monitor) Stop() {
	m.cancel()
}

func (m *Monitor) runLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probeAll()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.probeAll()
		}
	}
}

func (m *Monitor) probeAll() {
	for _, name := range m.registry.Names() {
		ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
		d, err := m.registry.Probe(ctx, name)
		cancel()
		if err != nil {
			logger.Warn("venue probe failed", "venue", name, "error", err)
			continue
		}

		metrics.VenueHealthChecks.WithLabelValues(name, fmt.Sprintf("%t", d.Healthy)).Inc()

		if m.sink != nil {
			ctx, cancel := context.WithTimeout(m.ctx, 2*time.Second)
			if err := m.sink.PutDescriptor(ctx, d); err != nil {
				logger.Warn("telemetry cache write failed", "venue", name, "error", err)
			}
			cancel()
		}
		if m.store != nil {
			ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
			if err := m.store.SaveVenueSnapshot(ctx, d); err != nil {
				logger.Warn("venue snapshot persist failed", "venue", name, "error", err)
			}
			cancel()
		}
	}
}
