package venue

import (
	"context"
	"testing"
	"time"

	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(NewSim("vault-a", "1.0"))
	r.Register(NewSim("vault-b", "2.1"))

	if _, ok := r.Get("vault-a"); !ok {
		t.Fatalf("vault-a not found")
	}
	if _, ok := r.Get("ghost"); ok {
		t.Fatalf("unexpected hit for unregistered venue")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "vault-a" || names[1] != "vault-b" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRegistryProbeRefreshesDescriptor(t *testing.T) {
	r := NewRegistry()
	sim := NewSim("vault-a", "1.0", WithAPY(350))
	r.Register(sim)
	ctx := context.Background()

	if err := sim.Deposit(ctx, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	d, err := r.Probe(ctx, "vault-a")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !d.Healthy || d.CurrentAPYBps != 350 || !d.TotalManaged.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected descriptor: %+v", d)
	}

	stored, ok := r.Descriptor("vault-a")
	if !ok || stored.CurrentAPYBps != 350 {
		t.Fatalf("probe did not refresh stored descriptor: %+v", stored)
	}
}

func TestRegistryProbeUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Probe(context.Background(), "ghost")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRegistryUpdateIgnoresUnregistered(t *testing.T) {
	r := NewRegistry()
	r.Register(NewSim("vault-a", "1.0"))

	r.UpdateDescriptor(model.VenueDescriptor{Name: "ghost", Healthy: true})
	if _, ok := r.Descriptor("ghost"); ok {
		t.Fatalf("descriptor stored for unregistered venue")
	}

	r.UpdateDescriptor(model.VenueDescriptor{Name: "vault-a", Healthy: true, CurrentAPYBps: 500})
	d, _ := r.Descriptor("vault-a")
	if d.CurrentAPYBps != 500 {
		t.Fatalf("descriptor not updated: %+v", d)
	}
	if d.ObservedAt.IsZero() {
		t.Fatalf("expected ObservedAt to be stamped")
	}
}

func TestDescriptorStaleness(t *testing.T) {
	now := time.Now().UTC()
	d := model.VenueDescriptor{Name: "vault-a", Healthy: true, ObservedAt: now.Add(-2 * time.Minute)}

	if !d.Stale(time.Minute, now) {
		t.Fatalf("descriptor observed 2m ago should be stale with 1m ttl")
	}
	if d.Stale(5*time.Minute, now) {
		t.Fatalf("descriptor observed 2m ago should be fresh with 5m ttl")
	}
}
