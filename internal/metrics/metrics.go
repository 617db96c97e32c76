package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service's Prometheus metrics. All recording methods
// are safe on a nil receiver, so components accept a *Collector without
// caring whether metrics are wired in.
type Collector struct {
	gatherer prometheus.Gatherer

	RefreshTotal    prometheus.Counter
	RefreshFailures prometheus.Counter
	RefreshSeconds  prometheus.Gauge
	Engineers       prometheus.Gauge
	EngineersOnline prometheus.Gauge

	EngineRequests   *prometheus.CounterVec
	EngineFailures   *prometheus.CounterVec
	RouteSelections  *prometheus.CounterVec
	RouteCacheHits   prometheus.Counter
	RouteCacheMisses prometheus.Counter

	WSClients prometheus.Gauge
}

// NewCollector registers the service metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	c.RefreshTotal, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_refresh_total",
		Help: "Total number of snapshot refresh attempts.",
	}), "snapshot_refresh_total")
	if err != nil {
		return nil, err
	}
	c.RefreshFailures, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_refresh_failures_total",
		Help: "Snapshot refreshes that failed and kept the previous data.",
	}), "snapshot_refresh_failures_total")
	if err != nil {
		return nil, err
	}
	c.RefreshSeconds, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_refresh_duration_seconds",
		Help: "Duration of the most recent snapshot refresh.",
	}), "snapshot_refresh_duration_seconds")
	if err != nil {
		return nil, err
	}
	c.Engineers, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_engineers",
		Help: "Engineers in the current snapshot.",
	}), "snapshot_engineers")
	if err != nil {
		return nil, err
	}
	c.EngineersOnline, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_engineers_online",
		Help: "Engineers currently classified as online.",
	}), "snapshot_engineers_online")
	if err != nil {
		return nil, err
	}

	c.EngineRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_engine_requests_total",
		Help: "Requests issued to external routing engines, labeled by engine.",
	}, []string{"engine"}), "routing_engine_requests_total")
	if err != nil {
		return nil, err
	}
	c.EngineFailures, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_engine_failures_total",
		Help: "Routing engine calls that produced no usable result.",
	}, []string{"engine"}), "routing_engine_failures_total")
	if err != nil {
		return nil, err
	}
	c.RouteSelections, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_selections_total",
		Help: "Completed route selections, labeled by the winning engine.",
	}, []string{"engine"}), "route_selections_total")
	if err != nil {
		return nil, err
	}
	c.RouteCacheHits, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "route_cache_hits_total",
		Help: "Route selections served from the in-memory cache.",
	}), "route_cache_hits_total")
	if err != nil {
		return nil, err
	}
	c.RouteCacheMisses, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "route_cache_misses_total",
		Help: "Route cache lookups that missed.",
	}), "route_cache_misses_total")
	if err != nil {
		return nil, err
	}

	c.WSClients, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_clients",
		Help: "Currently connected dashboard WebSocket clients.",
	}), "websocket_clients")
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ObserveRefresh records the outcome of one snapshot refresh.
func (c *Collector) ObserveRefresh(engineers, online int, took time.Duration, err error) {
	if c == nil {
		return
	}
	c.RefreshTotal.Inc()
	c.RefreshSeconds.Set(took.Seconds())
	if err != nil {
		c.RefreshFailures.Inc()
		return
	}
	c.Engineers.Set(float64(engineers))
	c.EngineersOnline.Set(float64(online))
}

// RecordEngineRequest counts one call to a routing engine and its outcome.
func (c *Collector) RecordEngineRequest(engine string, err error) {
	if c == nil {
		return
	}
	c.EngineRequests.WithLabelValues(engine).Inc()
	if err != nil {
		c.EngineFailures.WithLabelValues(engine).Inc()
	}
}

// RecordSelection counts a completed route selection by winning engine.
func (c *Collector) RecordSelection(engine string) {
	if c == nil {
		return
	}
	c.RouteSelections.WithLabelValues(engine).Inc()
}

// RecordCacheLookup counts a route cache hit or miss.
func (c *Collector) RecordCacheLookup(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.RouteCacheHits.Inc()
	} else {
		c.RouteCacheMisses.Inc()
	}
}

// SetWSClients tracks the connected dashboard client count.
func (c *Collector) SetWSClients(n int) {
	if c == nil {
		return
	}
	c.WSClients.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
