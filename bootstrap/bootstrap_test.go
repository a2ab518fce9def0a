package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/logger"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Workers              int
}

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Workers == 0 {
		c.Workers = 2
	}
}

func (c *testConfig) Validate() error { return c.ServiceConfig.Validate() }

type stubComponent struct {
	name    string
	status  component.HealthStatus
	started bool
	stopped bool
	events  *[]string
}

func (s *stubComponent) Name() string { return s.name }
func (s *stubComponent) Start(context.Context) error {
	s.started = true
	*s.events = append(*s.events, "start:"+s.name)
	return nil
}
func (s *stubComponent) Stop(context.Context) error {
	s.stopped = true
	*s.events = append(*s.events, "stop:"+s.name)
	return nil
}
func (s *stubComponent) Health(context.Context) component.Health {
	return component.Health{Name: s.name, Status: s.status}
}
func (s *stubComponent) Describe() component.Description {
	return component.Description{Name: "Stub " + s.name, Type: "test", Details: "details-" + s.name}
}

func TestNewApp_ValidatesConfig(t *testing.T) {
	if _, err := NewApp(&testConfig{}, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error for missing name")
	}
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "scribe"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Cfg.Workers != 2 || app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied: %+v", app.Cfg)
	}
}

func TestApp_RunTaskLifecycle(t *testing.T) {
	var events []string
	var out bytes.Buffer
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "scribe", Version: "1.0.0"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithSummaryOutput(&out))
	if err != nil {
		t.Fatal(err)
	}

	a := &stubComponent{name: "redis", status: component.StatusHealthy, events: &events}
	b := &stubComponent{name: "worker-pool", status: component.StatusHealthy, events: &events}
	_ = app.RegisterComponent(a)
	_ = app.RegisterComponent(b)
	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure")
		return nil
	})
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	taskErr := errors.New("task done")
	err = app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return taskErr
	})
	if !errors.Is(err, taskErr) {
		t.Fatalf("RunTask = %v", err)
	}

	want := "start:redis,start:worker-pool,onStart,configure,onReady,task,onStop,stop:worker-pool,stop:redis"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("events = %s\nwant %s", got, want)
	}
	for _, s := range []string{"scribe 1.0.0", "Stub redis", "details-worker-pool", "healthy"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("summary missing %q:\n%s", s, out.String())
		}
	}
}

func TestApp_ReadyCheck(t *testing.T) {
	var events []string
	app, _ := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Name: "scribe"}}, WithLogger(logger.Nop()))
	_ = app.RegisterComponent(&stubComponent{name: "kafka", status: component.StatusUnhealthy, events: &events})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "kafka=unhealthy") {
		t.Errorf("ReadyCheck = %v", err)
	}
}

func TestApp_ConfigureFailureStops(t *testing.T) {
	var events []string
	app, _ := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Name: "scribe"}},
		WithLogger(logger.Nop()), WithSummaryOutput(nil))
	c := &stubComponent{name: "redis", status: component.StatusHealthy, events: &events}
	_ = app.RegisterComponent(c)
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("wiring failed") })

	err := app.RunTask(context.Background(), func(context.Context) error {
		t.Error("task ran after a failed configure")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "wiring failed") {
		t.Fatalf("RunTask = %v", err)
	}
	if !c.stopped {
		t.Error("started components were not stopped")
	}
}

func TestSummary_Clients(t *testing.T) {
	s := NewSummary("scribe", "dev")
	s.TrackClient("runpod", "https://api.runpod.ai/v2/abc")
	var out bytes.Buffer
	s.Render(context.Background(), &out, nil)
	if !strings.Contains(out.String(), "https://api.runpod.ai/v2/abc") {
		t.Errorf("summary = %s", out.String())
	}
}
