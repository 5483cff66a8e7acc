package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists routes that stay reachable without a token.
var publicPaths = map[string]bool{
	"/health":              true,
	"/health/db":           true,
	"/metrics":             true,
	"/api/v1/formats":      true,
	"/api/v1/openapi.json": true,
	"/api/v1/docs":         true,
}

// AuthSkipper returns true for requests whose route is public. It matches
// the registered route pattern, not the raw URL.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given route is public.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
