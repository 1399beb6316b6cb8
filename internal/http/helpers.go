package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ownerHeader names the caller. There is no session layer; the upstream
// gateway authenticates and injects this header.
const ownerHeader = "X-Owner-ID"

func ownerFrom(r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	return owner, owner != ""
}

func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := ownerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing "+ownerHeader+" header")
	}
	return owner, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
