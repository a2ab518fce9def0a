// Package server is the HTTP front door of scribe: a Gin engine served over
// HTTP/1.1 and h2c, the shared middleware stack (server/middleware) and the
// probe endpoints (server/endpoint).
//
// Default routes:
//
//   - /          welcome message
//   - /health    aggregated component health
//   - /liveness  process liveness
//   - /readiness 503 while a component is unhealthy
//   - /info      build info and uptime
//   - /version   build version
package server
