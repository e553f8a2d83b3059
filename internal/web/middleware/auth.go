package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/PriceView/internal/config"
	"github.com/JonMunkholm/PriceView/internal/core"
)

// APIKeyHeader is the request header carrying the API key.
const APIKeyHeader = "X-API-Key"

var (
	errMissingAPIKey = errors.New("missing api key")
	errInvalidAPIKey = errors.New("invalid api key")
)

// APIKeyAuth returns middleware that validates X-API-Key header against configured keys.
// If RequireAPIKey is false, all requests pass through.
// If RequireAPIKey is true but no keys are configured, all requests are rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get(APIKeyHeader)
			switch {
			case apiKey == "":
				reject(w, r, errMissingAPIKey, http.StatusUnauthorized)
			case !isValidAPIKey(apiKey, cfg.APIKeys):
				reject(w, r, errInvalidAPIKey, http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)
	slog.Warn("auth: request rejected",
		"reason", err.Error(),
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  msg.Message,
		"action": msg.Action,
		"code":   msg.Code,
	})
}

// isValidAPIKey checks if the provided key matches any configured key.
// Every key is compared so timing does not reveal which one matched.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
