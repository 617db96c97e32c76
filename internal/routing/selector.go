package routing

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"fieldwatch-backend/internal/geo"
	"fieldwatch-backend/internal/metrics"
	"fieldwatch-backend/internal/models"
)

// DefaultSanityRatio flags driving distances more than twice the air
// distance as suspect road data.
const DefaultSanityRatio = 2.0

// jointTolerance is how close (in degrees) two vertices at a leg boundary
// must be to count as the same point.
const jointTolerance = 1e-4

// Selector queries the primary and secondary routing engines for each leg
// and applies a deterministic preference rule to pick a winner.
type Selector struct {
	primary     Engine
	secondary   Engine
	sanityRatio float64
	metrics     *metrics.Collector

	// Cache, when set, short-circuits SelectBestRoute for recently
	// requested leg sequences.
	Cache *Cache
}

// NewSelector wires the two engines together. A non-positive sanityRatio
// falls back to the default 2.0.
func NewSelector(primary, secondary Engine, sanityRatio float64, collector *metrics.Collector) *Selector {
	if sanityRatio <= 0 {
		sanityRatio = DefaultSanityRatio
	}
	return &Selector{
		primary:     primary,
		secondary:   secondary,
		sanityRatio: sanityRatio,
		metrics:     collector,
	}
}

// legOutcome is the per-leg selection before legs are combined.
type legOutcome struct {
	route    EngineRoute
	engine   string
	air      float64
	warnings []string
	fallback bool
}

// SelectBestRoute produces a driving route across the given legs. Each leg
// races both engines independently; engine failures degrade the result
// instead of erroring. The only error returned is for an empty leg list.
func (s *Selector) SelectBestRoute(ctx context.Context, legs []Leg) (*models.RouteResult, error) {
	if len(legs) == 0 {
		return nil, fmt.Errorf("no legs to route")
	}

	if s.Cache != nil {
		if cached, ok := s.Cache.Get(legs); ok {
			s.metrics.RecordCacheLookup(true)
			return cached, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	outcomes := make([]legOutcome, len(legs))
	for i, leg := range legs {
		outcomes[i] = s.selectLeg(ctx, leg)
	}

	result := combineLegs(outcomes)
	s.metrics.RecordSelection(result.Engine)
	log.Printf("🗺️  Route selected: %s, %.2f km (air %.2f km), %d leg(s)",
		result.Engine, result.DistanceKm, result.AirDistanceKm, len(legs))

	if s.Cache != nil {
		s.Cache.Set(legs, result)
	}
	return result, nil
}

// selectLeg runs the full selection process for one leg.
func (s *Selector) selectLeg(ctx context.Context, leg Leg) legOutcome {
	air := geo.DistanceKm(leg.From, leg.To)

	var (
		wg                 sync.WaitGroup
		priRoute, secRoute *EngineRoute
		priErr, secErr     error
	)

	// Both engines are queried unconditionally so a shorter secondary
	// result is detected even when the primary succeeds.
	wg.Add(2)
	go func() {
		defer wg.Done()
		priRoute, priErr = s.primary.Route(ctx, leg.From, leg.To)
		s.metrics.RecordEngineRequest(s.primary.Name(), priErr)
	}()
	go func() {
		defer wg.Done()
		secRoute, secErr = s.secondary.Route(ctx, leg.From, leg.To)
		s.metrics.RecordEngineRequest(s.secondary.Name(), secErr)
	}()
	wg.Wait()

	out := legOutcome{air: air}

	switch {
	case priErr == nil:
		out.route = *priRoute
		out.engine = models.EnginePrimary
		// The secondary only displaces a working primary when it is
		// strictly shorter and still plausible against the air distance.
		if secErr == nil && secRoute.DistanceKm < priRoute.DistanceKm && secRoute.DistanceKm <= s.sanityRatio*air {
			out.route = *secRoute
			out.engine = models.EngineSecondary
		}
	case secErr == nil:
		out.route = *secRoute
		out.engine = models.EngineSecondary
	default:
		out.route = EngineRoute{
			Coordinates: [][2]float64{{leg.From.Lng, leg.From.Lat}, {leg.To.Lng, leg.To.Lat}},
			DistanceKm:  air,
			DurationMin: 0,
		}
		out.engine = models.EngineFallback
		out.fallback = true
		out.warnings = append(out.warnings, fmt.Sprintf(
			"both routing engines failed; showing straight-line path of %.2f km", air))
	}

	if out.route.DistanceKm > s.sanityRatio*air {
		out.warnings = append(out.warnings, fmt.Sprintf(
			"driving distance %.2f km exceeds %.1fx the air distance %.2f km; road data may be inaccurate",
			out.route.DistanceKm, s.sanityRatio, air))
	}

	return out
}

// combineLegs merges per-leg outcomes into one result. The combined engine
// label is primary only when every leg used the primary engine; any
// straight-line leg marks the whole route as degraded, while the Fallback
// flag is reserved for routes where no engine produced anything at all.
func combineLegs(legs []legOutcome) *models.RouteResult {
	result := &models.RouteResult{}

	allPrimary := true
	allFallback := true
	anyFallback := false
	var warnings []string

	for i := range legs {
		leg := &legs[i]
		result.DistanceKm += leg.route.DistanceKm
		result.DurationMin += leg.route.DurationMin
		result.AirDistanceKm += leg.air
		result.Coordinates = appendPath(result.Coordinates, leg.route.Coordinates)

		for _, w := range leg.warnings {
			if len(legs) > 1 {
				w = fmt.Sprintf("leg %d: %s", i+1, w)
			}
			warnings = append(warnings, w)
		}

		if leg.engine != models.EnginePrimary {
			allPrimary = false
		}
		if leg.fallback {
			anyFallback = true
		} else {
			allFallback = false
		}
	}

	switch {
	case anyFallback:
		result.Engine = models.EngineFallback
	case allPrimary:
		result.Engine = models.EnginePrimary
	default:
		result.Engine = models.EngineSecondary
	}
	result.Fallback = allFallback
	result.Warning = strings.Join(warnings, "; ")

	return result
}

// appendPath concatenates leg geometries, dropping the next leg's first
// vertex when it coincides with the previous leg's last one.
func appendPath(dst, src [][2]float64) [][2]float64 {
	if len(dst) > 0 && len(src) > 0 && samePoint(dst[len(dst)-1], src[0]) {
		src = src[1:]
	}
	return append(dst, src...)
}

func samePoint(a, b [2]float64) bool {
	return math.Abs(a[0]-b[0]) <= jointTolerance && math.Abs(a[1]-b[1]) <= jointTolerance
}
