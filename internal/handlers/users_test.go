package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing fields", `{"email":"a@b.c"}`},
		{"unknown role", `{"email":"a@b.c","password":"pw","name":"A","role":"driver"}`},
	}

	// A nil db is safe here: every case must be rejected before the query.
	handler := CreateUser(nil)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLoginRejectsBadBody(t *testing.T) {
	handler := Login(nil, "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
