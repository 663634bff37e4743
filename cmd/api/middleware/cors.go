package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/cors"
)

// OriginEnv overrides the configured origins with a comma-separated list.
const OriginEnv = "CORS_ALLOWED_ORIGIN"

// AllowedOrigins returns the origins from OriginEnv, or fallback when unset.
func AllowedOrigins(fallback []string) []string {
	value := os.Getenv(OriginEnv)
	if value == "" {
		if len(fallback) == 0 {
			return []string{"*"}
		}
		return fallback
	}
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func Cors(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: AllowedOrigins(origins),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         3600,
	})
}
