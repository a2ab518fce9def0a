package component

import (
	"context"
	"fmt"
	"testing"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "redis", health: Health{Name: "redis", Status: StatusHealthy}}

	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "redis"}
	r.Register(c)

	err := r.Register(&mockComponent{name: "redis"})
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "redis"}
	r.Register(c)

	got := r.Get("redis")
	if got == nil {
		t.Fatal("expected to get registered component")
	}
	if got.Name() != "redis" {
		t.Errorf("expected 'db', got %q", got.Name())
	}
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry()
	got := r.Get("missing")
	if got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAll(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{
		name: "redis", startOrder: &order,
		health: Health{Name: "redis", Status: StatusHealthy},
	})
	r.Register(&mockComponent{
		name: "kafka", startOrder: &order,
		health: Health{Name: "kafka", Status: StatusHealthy},
	})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if len(order) != 2 {
		t.Fatalf("expected 2 starts, got %d", len(order))
	}
	if order[0] != "redis" || order[1] != "kafka" {
		t.Errorf("expected start order [db, cache], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "redis", startErr: fmt.Errorf("connection refused")})

	err := r.StartAll(context.Background())
	if err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "redis", stopOrder: &order, health: Health{Name: "redis", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "storage", stopOrder: &order, health: Health{Name: "storage", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "kafka", stopOrder: &order, health: Health{Name: "kafka", Status: StatusHealthy}})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(order))
	}
	if order[0] != "kafka" || order[1] != "storage" || order[2] != "redis" {
		t.Errorf("expected reverse stop order [kafka storage redis], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "redis", stopOrder: &order})

	// Don't start, then stop
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{
		name: "redis", stopErr: fmt.Errorf("stop failed"),
		health: Health{Name: "redis", Status: StatusHealthy},
	})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{
		name:   "redis",
		health: Health{Name: "redis", Status: StatusHealthy, Message: "connected"},
	})
	r.Register(&mockComponent{
		name:   "kafka",
		health: Health{Name: "kafka", Status: StatusUnhealthy, Message: "timeout"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected redis healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected kafka unhealthy, got %s", results[1].Status)
	}
}

func TestHealthStatusConstants(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("expected 'healthy', got %q", StatusHealthy)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("expected 'unhealthy', got %q", StatusUnhealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("expected 'degraded', got %q", StatusDegraded)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name string
		in   []Health
		want HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Health{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"degraded", []Health{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", []Health{{Status: StatusDegraded}, {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.in); got != tt.want {
				t.Errorf("Overall = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLaunchStopsFirst(t *testing.T) {
	r := NewRegistry()
	var startOrder, stopOrder []string
	r.Register(&mockComponent{name: "redis", startOrder: &startOrder, stopOrder: &stopOrder})
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Launch(context.Background(), &mockComponent{name: "http-server", startOrder: &startOrder, stopOrder: &stopOrder}); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	r.StopAll(context.Background())

	if fmt.Sprint(startOrder) != "[redis http-server]" {
		t.Errorf("start order = %v", startOrder)
	}
	if fmt.Sprint(stopOrder) != "[http-server redis]" {
		t.Errorf("stop order = %v", stopOrder)
	}
}

func TestLaunchStartError(t *testing.T) {
	r := NewRegistry()
	var stopOrder []string
	err := r.Launch(context.Background(), &mockComponent{name: "worker-pool", startErr: fmt.Errorf("boom"), stopOrder: &stopOrder})
	if err == nil {
		t.Fatal("expected error")
	}
	r.StopAll(context.Background())
	if len(stopOrder) != 0 {
		t.Errorf("unstarted component stopped: %v", stopOrder)
	}
}
