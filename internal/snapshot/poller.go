package snapshot

import (
	"context"
	"log"
	"sync"
	"time"

	"fieldwatch-backend/internal/enrich"
	"fieldwatch-backend/internal/metrics"
	"fieldwatch-backend/internal/models"
)

// Source provides the three monitoring tables, already reduced to one row
// per engineer and deduplicated sites.
type Source interface {
	FetchEngineers(ctx context.Context) ([]models.EngineerStatus, error)
	FetchSites(ctx context.Context) ([]models.SiteRecord, error)
	FetchWarehouses(ctx context.Context) ([]models.WarehouseRecord, error)
}

// Broadcaster pushes a refresh summary to connected dashboard clients.
type Broadcaster interface {
	BroadcastSnapshot(s Snapshot)
}

// Notifier observes each successful refresh, e.g. to alert on engineer
// state transitions.
type Notifier interface {
	HandleRefresh(engineers []models.EnrichedEngineer)
}

// Poller drives the refresh cycle and owns the current snapshot. A failed
// refresh keeps the previous data and records the error string; only the
// window before the very first success reports not-ready.
type Poller struct {
	source   Source
	enricher *enrich.Enricher
	interval time.Duration
	metrics  *metrics.Collector

	// Broadcaster and Notifier, when set before Run, observe every
	// successful refresh.
	Broadcaster Broadcaster
	Notifier    Notifier

	mu    sync.RWMutex
	snap  Snapshot
	ready bool
}

// NewPoller builds a poller over the given source. A non-positive interval
// falls back to 30 seconds.
func NewPoller(source Source, enricher *enrich.Enricher, interval time.Duration, collector *metrics.Collector) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		source:   source,
		enricher: enricher,
		interval: interval,
		metrics:  collector,
	}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch-enrich-swap cycle.
func (p *Poller) Refresh(ctx context.Context) {
	start := time.Now()
	engineers, sites, warehouses, err := p.fetch(ctx)
	took := time.Since(start)

	p.mu.Lock()

	next := Snapshot{
		LastRefresh:     time.Now(),
		RefreshDuration: took,
	}
	if err != nil {
		log.Printf("❌ Snapshot refresh failed: %v", err)
		next.Engineers = p.snap.Engineers
		next.Sites = p.snap.Sites
		next.Warehouses = p.snap.Warehouses
		next.LastRefreshError = err.Error()
	} else {
		next.Engineers = p.enricher.EnrichAll(engineers, sites, warehouses, time.Now().UTC())
		next.Sites = sites
		next.Warehouses = warehouses
		p.ready = true
		log.Printf("📡 Snapshot refreshed: %d engineers (%d online), %d sites, %d warehouses in %s",
			len(next.Engineers), next.OnlineCount(), len(sites), len(warehouses), took.Round(time.Millisecond))
	}

	p.snap = next
	p.mu.Unlock()

	p.metrics.ObserveRefresh(len(next.Engineers), next.OnlineCount(), took, err)

	if err != nil {
		return
	}
	if p.Broadcaster != nil {
		p.Broadcaster.BroadcastSnapshot(next)
	}
	if p.Notifier != nil {
		p.Notifier.HandleRefresh(next.Engineers)
	}
}

func (p *Poller) fetch(ctx context.Context) ([]models.EngineerStatus, []models.SiteRecord, []models.WarehouseRecord, error) {
	engineers, err := p.source.FetchEngineers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	sites, err := p.source.FetchSites(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	warehouses, err := p.source.FetchWarehouses(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return engineers, sites, warehouses, nil
}

// Current returns the latest snapshot, which is the last good data during a
// refresh failure streak.
func (p *Poller) Current() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Ready reports whether at least one refresh has succeeded since startup.
func (p *Poller) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}
