package component

import "context"

// HealthStatus is the state reported by a component's health probe.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one entry of the /readiness report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a long-lived dependency the process starts before serving
// and stops on shutdown: the Redis client, chunk storage, the Kafka
// producer, the worker pool and the HTTP server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a component's row in the startup summary.
type Description struct {
	// Name defaults to the component's Name().
	Name string
	// Type groups rows, e.g. "redis", "storage", "workers".
	Type    string
	Details string
	// Port is 0 when the component does not listen.
	Port int
}

// Describable components show up in the startup summary.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route listed in the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by the HTTP server component.
type RouteProvider interface {
	Routes() []Route
}
