package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const contextUserIDKey contextKey = "user_id"

// withUserID returns a context carrying the authenticated user's ID.
func withUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, contextUserIDKey, userID)
}

// userIDFromContext returns the authenticated user's ID, or false when
// the request never presented a valid token.
func userIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(contextUserIDKey).(int)
	if !ok || userID < 1 {
		return 0, false
	}
	return userID, true
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
