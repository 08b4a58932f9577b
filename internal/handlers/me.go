package handlers

import (
	"net/http"
	"time"
)

type MeResponse struct {
	Email string `json:"email"`
}

type HealthResponse struct {
	OK bool      `json:"ok"`
	At time.Time `json:"at"`
}

// Me returns the identity of the authenticated caller, taken from the
// verified token claims without a store lookup.
func Me(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{Email: claims.Subject})
}

// Health is the unauthenticated liveness check.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true, At: time.Now().UTC()})
}
