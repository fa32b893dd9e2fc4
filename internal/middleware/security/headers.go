package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

// HeadersMiddleware sets response hardening headers. Comparison results depend on
// stored snapshots, so API responses are marked non-cacheable.
func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := "default-src 'none'; " +
		"connect-src 'self'" + buildConnectSrc(cfg.AllowedOrigins) + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'none'; " +
		"form-action 'none'"

	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy", csp)

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			c.Set(fiber.HeaderCacheControl, "no-store")
		}

		return c.Next()
	}
}

func buildConnectSrc(origins []string) string {
	var b strings.Builder
	for _, origin := range origins {
		if origin == "" || origin == "*" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(origin)
	}
	return b.String()
}
