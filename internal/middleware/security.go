package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// APIKeyHeader carries the shared key of serve mode
const APIKeyHeader = "X-API-Key"

var allowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}

// CORSConfig returns CORS middleware restricted to the given domain
func CORSConfig(domain string) echo.MiddlewareFunc {
	allowHeaders := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, APIKeyHeader}

	if domain == "" {
		// Fallback to localhost for development
		return middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"http://localhost:4200", "http://localhost:3000"},
			AllowMethods: allowMethods,
			AllowHeaders: allowHeaders,
			MaxAge:       86400,
		})
	}

	allowedOrigins := []string{"https://" + domain}
	if isLocal(domain) {
		allowedOrigins = append(allowedOrigins, "http://"+domain)
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  allowMethods,
		AllowHeaders:  allowHeaders,
		ExposeHeaders: []string{echo.HeaderContentDisposition},
		MaxAge:        86400,
	})
}

// SecurityHeaders adds security headers to all responses
func SecurityHeaders(domain string) echo.MiddlewareFunc {
	csp := "default-src 'none'; frame-ancestors 'self'"
	if domain != "" && !isLocal(domain) {
		csp = "default-src 'none'; frame-ancestors https://" + domain
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)

			// HSTS only when the request came through HTTPS
			if c.Request().Header.Get("X-Forwarded-Proto") == "https" || c.Request().TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			return next(c)
		}
	}
}

// APIKey rejects requests whose X-API-Key header does not match key.
// An empty key disables the check. Health probes are always allowed.
func APIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" || c.Path() == "/health" || c.Request().Method == http.MethodOptions {
				return next(c)
			}

			given := c.Request().Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Invalid or missing API key",
				})
			}
			return next(c)
		}
	}
}

func isLocal(domain string) bool {
	return strings.Contains(domain, "localhost") || strings.Contains(domain, "127.0.0.1")
}
