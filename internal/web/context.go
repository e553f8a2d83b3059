package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/PriceView/internal/logging"
	custommw "github.com/JonMunkholm/PriceView/internal/web/middleware"
)

// WithRequestMetadata records the caller's IP and User-Agent on ctx so
// report logs and the per-IP send limit can see them.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return logging.WithClient(ctx, logging.Client{
		IP:        custommw.ClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
}
