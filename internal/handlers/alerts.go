package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"fieldwatch-backend/internal/middleware"
	"fieldwatch-backend/pkg/utils"
)

type RegisterTokenRequest struct {
	Token string `json:"token"`
}

type RegisterTokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterDeviceToken stores an FCM registration token for the authenticated
// user. Re-registering an existing token moves it to the new user, which is
// what happens when two managers share a tablet.
func RegisterDeviceToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req RegisterTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Token) == "" {
			utils.RespondError(w, http.StatusBadRequest, "Token is required")
			return
		}

		query := `
			INSERT INTO device_tokens (user_id, token)
			VALUES ($1, $2)
			ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id
		`
		if _, err := db.Exec(query, claims.UserID, strings.TrimSpace(req.Token)); err != nil {
			log.Printf("❌ Failed to register device token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register device token")
			return
		}

		log.Printf("🔔 Device token registered for %s", claims.Email)
		utils.JSON(w, http.StatusCreated, RegisterTokenResponse{
			Success: true,
			Message: "Device token registered",
		})
	}
}
