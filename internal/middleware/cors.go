package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"

	"github.com/polarisid/smartos-sub000/internal/config"
)

// corsOptions derives CORS rules from the server config. Credentials are only
// allowed for an explicit origin list; a wildcard serves anonymous clients.
func corsOptions(cfg *config.Config) cors.Options {
	origins := cfg.Server.CorsAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := slices.Contains(origins, "*")

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition"}, // filled PDF filename
		AllowCredentials: !wildcard,
		MaxAge:           600,
	}
}

func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	return cors.New(corsOptions(cfg)).Handler
}
