package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldwatch-backend/internal/models"
	"fieldwatch-backend/internal/routing"
)

// stubSelector records the legs it was asked to route and returns a canned
// result.
type stubSelector struct {
	legs   []routing.Leg
	result *models.RouteResult
	err    error
}

func (s *stubSelector) SelectBestRoute(ctx context.Context, legs []routing.Leg) (*models.RouteResult, error) {
	s.legs = legs
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &models.RouteResult{
		Engine:        models.EnginePrimary,
		DistanceKm:    12.5,
		DurationMin:   18,
		AirDistanceKm: 9.8,
	}, nil
}

func postRoute(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/routes/select", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSelectRouteExplicit(t *testing.T) {
	stub := &stubSelector{}
	handler := SelectRoute(readyProvider(), stub)

	rec := postRoute(handler, `{"from":{"lat":24.70,"lng":46.68},"to":{"lat":24.72,"lng":46.70}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if len(stub.legs) != 1 {
		t.Fatalf("legs = %d, want 1", len(stub.legs))
	}
	if !closeTo(stub.legs[0].From.Lat, 24.70) || !closeTo(stub.legs[0].To.Lng, 46.70) {
		t.Errorf("leg endpoints = %+v", stub.legs[0])
	}

	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Legs != 1 || resp.Route == nil || resp.Route.Engine != models.EnginePrimary {
		t.Errorf("response = %+v", resp)
	}
}

func TestSelectRouteExplicitVia(t *testing.T) {
	stub := &stubSelector{}
	handler := SelectRoute(readyProvider(), stub)

	rec := postRoute(handler, `{"from":{"lat":21.52,"lng":39.17},"via":{"lat":21.4858,"lng":39.1925},"to":{"lat":21.54,"lng":39.17}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if len(stub.legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(stub.legs))
	}
	if !closeTo(stub.legs[0].To.Lat, 21.4858) || !closeTo(stub.legs[1].From.Lat, 21.4858) {
		t.Errorf("via is not the joint between legs: %+v", stub.legs)
	}
}

func TestSelectRouteValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"empty body", `{}`, http.StatusBadRequest},
		{"from without to", `{"from":{"lat":24.7,"lng":46.68}}`, http.StatusBadRequest},
		{"from missing lat", `{"from":{"lng":46.68},"to":{"lat":24.72,"lng":46.70}}`, http.StatusUnprocessableEntity},
		{"via not a pair", `{"from":{"lat":24.70,"lng":46.68},"via":{"lat":24.71},"to":{"lat":24.72,"lng":46.70}}`, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postRoute(SelectRoute(readyProvider(), &stubSelector{}), tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestSelectRouteEngineerForm(t *testing.T) {
	stub := &stubSelector{}
	handler := SelectRoute(readyProvider(), stub)

	rec := postRoute(handler, `{"username":"A.Alharbi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if len(stub.legs) != 1 {
		t.Fatalf("legs = %d, want 1", len(stub.legs))
	}
	if !closeTo(stub.legs[0].From.Lat, 24.70) || !closeTo(stub.legs[0].To.Lat, 24.72) {
		t.Errorf("leg = %+v, want engineer -> assigned site", stub.legs[0])
	}

	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "a.alharbi" || resp.SiteID != "RUH0012" || resp.SiteName != "Olaya Tower North" {
		t.Errorf("response = %+v", resp)
	}
}

func TestSelectRouteSiteOverride(t *testing.T) {
	stub := &stubSelector{}
	handler := SelectRoute(readyProvider(), stub)

	rec := postRoute(handler, `{"username":"a.alharbi","site_id":" jed0345 "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if len(stub.legs) != 1 || !closeTo(stub.legs[0].To.Lat, 21.54) {
		t.Fatalf("legs = %+v, want destination JED0345", stub.legs)
	}

	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SiteID != "JED0345" {
		t.Errorf("site_id = %q, want JED0345", resp.SiteID)
	}
}

func TestSelectRouteViaWarehouse(t *testing.T) {
	stub := &stubSelector{}
	handler := SelectRoute(readyProvider(), stub)

	rec := postRoute(handler, `{"username":"m.alghamdi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if len(stub.legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(stub.legs))
	}
	if !closeTo(stub.legs[0].To.Lat, 21.4858) || !closeTo(stub.legs[1].From.Lng, 39.1925) {
		t.Errorf("warehouse is not the joint between legs: %+v", stub.legs)
	}
	if !closeTo(stub.legs[1].To.Lat, 21.54) {
		t.Errorf("second leg does not end at the site: %+v", stub.legs[1])
	}

	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Warehouse != "Jeddah Supply Depot" || resp.Legs != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSelectRouteEngineerErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unknown engineer", `{"username":"x.nobody"}`, http.StatusNotFound},
		{"engineer without gps", `{"username":"k.almutairi"}`, http.StatusUnprocessableEntity},
		{"no resolved target", `{"username":"f.alotaibi"}`, http.StatusUnprocessableEntity},
		{"unknown site override", `{"username":"a.alharbi","site_id":"XX999"}`, http.StatusNotFound},
		{"site without coordinates", `{"username":"a.alharbi","site_id":"RUH0200"}`, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postRoute(SelectRoute(readyProvider(), &stubSelector{}), tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestSelectRouteBeforeFirstRefresh(t *testing.T) {
	notReady := &fakeSnapshot{ready: false}
	stub := &stubSelector{}

	rec := postRoute(SelectRoute(notReady, stub), `{"username":"a.alharbi"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("engineer form status = %d, want 503", rec.Code)
	}

	// Explicit coordinates do not touch the snapshot and must keep working
	// while the poller warms up.
	rec = postRoute(SelectRoute(notReady, stub), `{"from":{"lat":24.70,"lng":46.68},"to":{"lat":24.72,"lng":46.70}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("explicit form status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestSelectRouteSelectorError(t *testing.T) {
	stub := &stubSelector{err: errors.New("no legs to route")}

	rec := postRoute(SelectRoute(readyProvider(), stub), `{"from":{"lat":24.70,"lng":46.68},"to":{"lat":24.72,"lng":46.70}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
