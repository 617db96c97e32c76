package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldwatch-backend/internal/middleware"
)

func authedRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/alerts/token", strings.NewReader(body))
	claims := middleware.UserClaims{UserID: "u-1", Email: "manager@fieldwatch.io", Role: "manager"}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func TestRegisterDeviceTokenRejectsUnauthenticated(t *testing.T) {
	handler := RegisterDeviceToken(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/token", strings.NewReader(`{"token":"abc"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRegisterDeviceTokenValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing token", `{}`},
		{"blank token", `{"token":"   "}`},
	}

	// A nil db is safe here: every case must be rejected before the query.
	handler := RegisterDeviceToken(nil)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, authedRequest(tc.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}
