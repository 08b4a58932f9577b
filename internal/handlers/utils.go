package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/authapi/apiserver/internal/auth"
)

type contextKey string

const contextClaimsKey contextKey = "claims"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func claimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(contextClaimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, errors.New("missing claims")
	}
	return claims, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
