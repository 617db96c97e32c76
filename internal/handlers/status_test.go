package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldwatch-backend/internal/snapshot"
)

type fakeCounter int

func (f fakeCounter) ClientCount() int { return int(f) }

func TestStatus(t *testing.T) {
	handler := Status(readyProvider(), fakeCounter(3))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Engineers != 5 || resp.Sites != 4 || resp.Warehouses != 2 {
		t.Errorf("counts = %+v", resp)
	}
	if resp.Online != 3 {
		t.Errorf("online = %d, want 3", resp.Online)
	}
	if resp.WSClients != 3 {
		t.Errorf("ws_clients = %d, want 3", resp.WSClients)
	}
	if resp.LastRefresh != "2026-08-26T09:30:00Z" {
		t.Errorf("last_refresh = %q", resp.LastRefresh)
	}
	if resp.RefreshDurationMs != 120 {
		t.Errorf("refresh_duration_ms = %d, want 120", resp.RefreshDurationMs)
	}
}

func TestStatusBeforeFirstRefresh(t *testing.T) {
	handler := Status(&fakeSnapshot{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	// Status always answers so the ops page can show the warm-up state.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.LastRefresh != "" {
		t.Errorf("last_refresh = %q, want empty", resp.LastRefresh)
	}
}

func TestHealth(t *testing.T) {
	healthy := testSnapshot()

	degraded := testSnapshot()
	degraded.LastRefreshError = "fetch engineers: connection refused"

	tests := []struct {
		name       string
		snap       snapshot.Snapshot
		wantStatus int
		wantState  string
	}{
		{"starting", snapshot.Snapshot{}, http.StatusServiceUnavailable, "starting"},
		{"ok", healthy, http.StatusOK, "ok"},
		{"degraded", degraded, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := Health(&fakeSnapshot{snap: tc.snap, ready: !tc.snap.LastRefresh.IsZero()})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["status"] != tc.wantState {
				t.Errorf("state = %q, want %q", body["status"], tc.wantState)
			}
			if tc.wantState == "degraded" && body["error"] == "" {
				t.Error("degraded response is missing the error")
			}
		})
	}
}

func TestHealthRecovers(t *testing.T) {
	snap := testSnapshot()
	snap.LastRefreshError = "fetch sites: timeout"
	provider := &fakeSnapshot{snap: snap, ready: true}
	handler := Health(provider)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 while degraded", rec.Code)
	}

	provider.snap.LastRefreshError = ""
	provider.snap.LastRefresh = time.Now().UTC()

	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after recovery", rec.Code)
	}
}
