package routing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"fieldwatch-backend/internal/geo"
	"fieldwatch-backend/internal/models"
)

// stubEngine replays queued results, one per call, in call order.
type stubEngine struct {
	name  string
	mu    sync.Mutex
	queue []stubResult
	calls int
}

type stubResult struct {
	route *EngineRoute
	err   error
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Route(ctx context.Context, from, to geo.Coord) (*EngineRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.queue) == 0 {
		return nil, fmt.Errorf("unexpected call to %s", s.name)
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	if next.err != nil {
		return nil, next.err
	}
	cp := *next.route
	return &cp, nil
}

func (s *stubEngine) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func ok(route *EngineRoute) stubResult { return stubResult{route: route} }
func fail() stubResult                 { return stubResult{err: fmt.Errorf("engine unavailable")} }

// pointsApart returns two coordinates separated by the given air distance
// along a meridian.
func pointsApart(km float64) (geo.Coord, geo.Coord) {
	from := geo.Coord{Lat: 21.0, Lng: 39.0}
	to := geo.Coord{Lat: 21.0 + km/6371.0*180/math.Pi, Lng: 39.0}
	return from, to
}

func road(km float64) *EngineRoute {
	return &EngineRoute{
		Coordinates: [][2]float64{{39.0, 21.0}, {39.05, 21.05}, {39.1, 21.1}},
		DistanceKm:  km,
		DurationMin: km, // arbitrary: a minute per kilometer
	}
}

func newTestSelector(pri, sec []stubResult) (*Selector, *stubEngine, *stubEngine) {
	p := &stubEngine{name: "graphhopper", queue: pri}
	s := &stubEngine{name: "osrm", queue: sec}
	return NewSelector(p, s, 2.0, nil), p, s
}

func TestSelectBestRoutePrefersPrimary(t *testing.T) {
	from, to := pointsApart(10.0)
	sel, pri, sec := newTestSelector(
		[]stubResult{ok(road(11.0))},
		[]stubResult{ok(road(12.0))},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EnginePrimary {
		t.Errorf("engine = %q, want primary", got.Engine)
	}
	if got.DistanceKm != 11.0 {
		t.Errorf("distance = %v, want 11.0", got.DistanceKm)
	}
	if got.Fallback {
		t.Errorf("fallback flag set on a routed result")
	}
	if got.Warning != "" {
		t.Errorf("unexpected warning %q", got.Warning)
	}
	// Both engines must be queried even though the primary succeeded.
	if pri.callCount() != 1 || sec.callCount() != 1 {
		t.Errorf("engine calls = %d/%d, want 1/1", pri.callCount(), sec.callCount())
	}
}

func TestSecondaryWinsWhenShorterAndSane(t *testing.T) {
	from, to := pointsApart(10.0)
	sel, _, _ := newTestSelector(
		[]stubResult{ok(road(11.0))},
		[]stubResult{ok(road(9.5))},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EngineSecondary {
		t.Errorf("engine = %q, want secondary", got.Engine)
	}
	if got.DistanceKm != 9.5 {
		t.Errorf("distance = %v, want 9.5", got.DistanceKm)
	}
}

func TestSecondaryAcceptedAtExactSanityBoundary(t *testing.T) {
	from, to := pointsApart(10.0)
	air := geo.DistanceKm(from, to)

	sel, _, _ := newTestSelector(
		[]stubResult{ok(road(3.0 * air))},
		[]stubResult{ok(road(2.0 * air))}, // exactly at the boundary
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EngineSecondary {
		t.Errorf("engine = %q, want secondary at exactly 2.0x air", got.Engine)
	}
}

func TestSecondaryRejectedAboveSanityBoundary(t *testing.T) {
	from, to := pointsApart(10.0)
	air := geo.DistanceKm(from, to)

	sel, _, _ := newTestSelector(
		[]stubResult{ok(road(3.0 * air))},
		[]stubResult{ok(road(2.0*air + 0.01))}, // shorter than primary, but implausible
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EnginePrimary {
		t.Errorf("engine = %q, want primary when secondary exceeds the sanity ratio", got.Engine)
	}
	// The winner itself is over the ratio, so the result carries a warning.
	if got.Warning == "" {
		t.Errorf("expected a sanity warning on the winning distance")
	}
}

func TestSecondaryUsedWhenPrimaryFails(t *testing.T) {
	from, to := pointsApart(10.0)
	sel, _, _ := newTestSelector(
		[]stubResult{fail()},
		[]stubResult{ok(road(12.5))},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EngineSecondary {
		t.Errorf("engine = %q, want secondary after primary failure", got.Engine)
	}
	if got.Fallback {
		t.Errorf("fallback flag set although the secondary engine routed")
	}
}

func TestFallbackWhenBothEnginesFail(t *testing.T) {
	from, to := pointsApart(10.0)
	air := geo.DistanceKm(from, to)

	sel, _, _ := newTestSelector(
		[]stubResult{fail()},
		[]stubResult{fail()},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EngineFallback || !got.Fallback {
		t.Errorf("engine/fallback = %q/%v, want fallback/true", got.Engine, got.Fallback)
	}
	if got.DistanceKm != air {
		t.Errorf("distance = %v, want the air distance %v", got.DistanceKm, air)
	}
	if got.DurationMin != 0 {
		t.Errorf("duration = %v, want 0 for a straight-line result", got.DurationMin)
	}
	want := [][2]float64{{from.Lng, from.Lat}, {to.Lng, to.Lat}}
	if len(got.Coordinates) != 2 || got.Coordinates[0] != want[0] || got.Coordinates[1] != want[1] {
		t.Errorf("coordinates = %v, want the straight line %v", got.Coordinates, want)
	}
	if got.Warning == "" {
		t.Errorf("expected an explanatory warning on the fallback result")
	}
}

func TestWarningQuotesBothDistances(t *testing.T) {
	from, to := pointsApart(10.0)
	air := geo.DistanceKm(from, to)

	sel, _, _ := newTestSelector(
		[]stubResult{ok(road(25.0))},
		[]stubResult{fail()},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Warning == "" {
		t.Fatalf("winning distance %v with air %v should warn", got.DistanceKm, air)
	}
	if !strings.Contains(got.Warning, "25.00") || !strings.Contains(got.Warning, fmt.Sprintf("%.2f", air)) {
		t.Errorf("warning %q should quote both distances", got.Warning)
	}
}

func TestNoWarningWithinSanityRatio(t *testing.T) {
	from, to := pointsApart(10.0)
	sel, _, _ := newTestSelector(
		[]stubResult{ok(road(15.0))},
		[]stubResult{ok(road(16.0))},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Warning != "" {
		t.Errorf("warning %q on a distance within the sanity ratio", got.Warning)
	}
}

func TestTwoLegsCombineAndDedupeJoint(t *testing.T) {
	from, mid := pointsApart(10.0)
	_, to := pointsApart(20.0)

	leg1 := &EngineRoute{
		Coordinates: [][2]float64{{39.0, 21.0}, {39.0, 21.05}, {39.0, 21.09}},
		DistanceKm:  11.0,
		DurationMin: 10,
	}
	// The second leg starts within the joint tolerance of leg 1's end.
	leg2 := &EngineRoute{
		Coordinates: [][2]float64{{39.00005, 21.09005}, {39.0, 21.18}},
		DistanceKm:  12.0,
		DurationMin: 11,
	}

	sel, _, _ := newTestSelector(
		[]stubResult{ok(leg1), ok(leg2)},
		[]stubResult{ok(road(30.0)), ok(road(30.0))},
	)

	legs := []Leg{{From: from, To: mid}, {From: mid, To: to}}
	got, err := sel.SelectBestRoute(context.Background(), legs)
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EnginePrimary {
		t.Errorf("engine = %q, want primary when both legs used it", got.Engine)
	}
	if got.DistanceKm != 23.0 {
		t.Errorf("distance = %v, want 23.0", got.DistanceKm)
	}
	if got.DurationMin != 21.0 {
		t.Errorf("duration = %v, want 21.0", got.DurationMin)
	}
	// 3 + 2 vertices with the duplicated joint dropped.
	if len(got.Coordinates) != 4 {
		t.Errorf("combined path has %d vertices, want 4 (joint deduplicated)", len(got.Coordinates))
	}
}

func TestTwoLegsKeepDistinctJoint(t *testing.T) {
	leg1 := &EngineRoute{
		Coordinates: [][2]float64{{39.0, 21.0}, {39.0, 21.09}},
		DistanceKm:  10,
	}
	leg2 := &EngineRoute{
		// Clearly beyond the joint tolerance.
		Coordinates: [][2]float64{{39.0, 21.091}, {39.0, 21.18}},
		DistanceKm:  10,
	}

	combined := appendPath(append([][2]float64{}, leg1.Coordinates...), leg2.Coordinates)
	if len(combined) != 4 {
		t.Errorf("distinct joint: %d vertices, want 4", len(combined))
	}

	near := appendPath(append([][2]float64{}, leg1.Coordinates...), [][2]float64{{39.00003, 21.09003}, {39.0, 21.18}})
	if len(near) != 3 {
		t.Errorf("coincident joint: %d vertices, want 3", len(near))
	}
}

func TestTwoLegsMixedEnginesLabelSecondary(t *testing.T) {
	from, mid := pointsApart(10.0)
	_, to := pointsApart(20.0)

	sel, _, _ := newTestSelector(
		[]stubResult{ok(road(11.0)), fail()},
		[]stubResult{ok(road(15.0)), ok(road(12.0))},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: mid}, {From: mid, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EngineSecondary {
		t.Errorf("engine = %q, want secondary for a mixed primary/secondary route", got.Engine)
	}
	if got.Fallback {
		t.Errorf("fallback flag set although every leg was routed")
	}
}

func TestTwoLegsWithOneFallbackLeg(t *testing.T) {
	from, mid := pointsApart(10.0)
	_, to := pointsApart(20.0)

	sel, _, _ := newTestSelector(
		[]stubResult{ok(road(11.0)), fail()},
		[]stubResult{ok(road(15.0)), fail()},
	)

	got, err := sel.SelectBestRoute(context.Background(), []Leg{{From: from, To: mid}, {From: mid, To: to}})
	if err != nil {
		t.Fatalf("SelectBestRoute: %v", err)
	}
	if got.Engine != models.EngineFallback {
		t.Errorf("engine = %q, want fallback when any leg degraded", got.Engine)
	}
	if got.Fallback {
		t.Errorf("fallback flag should be reserved for fully degraded routes")
	}
	if !strings.Contains(got.Warning, "leg 2") {
		t.Errorf("warning %q should name the degraded leg", got.Warning)
	}
}

func TestSelectBestRouteRejectsEmptyLegs(t *testing.T) {
	sel, _, _ := newTestSelector(nil, nil)
	if _, err := sel.SelectBestRoute(context.Background(), nil); err == nil {
		t.Fatalf("expected an error for an empty leg list")
	}
}

func TestSelectorServesFromCache(t *testing.T) {
	from, to := pointsApart(10.0)
	sel, pri, sec := newTestSelector(
		[]stubResult{ok(road(11.0))},
		[]stubResult{ok(road(12.0))},
	)
	sel.Cache = NewCache(10, 0)

	legs := []Leg{{From: from, To: to}}
	first, err := sel.SelectBestRoute(context.Background(), legs)
	if err != nil {
		t.Fatalf("first SelectBestRoute: %v", err)
	}
	second, err := sel.SelectBestRoute(context.Background(), legs)
	if err != nil {
		t.Fatalf("second SelectBestRoute: %v", err)
	}

	if pri.callCount() != 1 || sec.callCount() != 1 {
		t.Errorf("engine calls = %d/%d, want 1/1 with a warm cache", pri.callCount(), sec.callCount())
	}
	if second.DistanceKm != first.DistanceKm || second.Engine != first.Engine {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
}
