package ratelimit

import (
	"strings"
)

// unlimited marks routes that are never throttled
var unlimited = RouteLimit{}

// MatchRoute matches a request path and method to a route limit.
// Returns nil when no route matches. Paths ending in "/" match by prefix.
func MatchRoute(path string, method string, routes []RouteLimit) *RouteLimit {
	if path == "/health" && method == "GET" {
		return &unlimited
	}

	for i := range routes {
		route := &routes[i]
		if route.Path == path && route.Method == method {
			return route
		}
	}

	for i := range routes {
		route := &routes[i]
		if route.Method == method && strings.HasSuffix(route.Path, "/") && strings.HasPrefix(path, route.Path) {
			return route
		}
	}

	return nil
}
