package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/scribe/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// probePaths sort after the API routes in the summary.
var probePaths = map[string]bool{
	"/":          true,
	"/health":    true,
	"/liveness":  true,
	"/readiness": true,
	"/info":      true,
	"/version":   true,
}

// Component adapts a Server to the component lifecycle.
type Component struct {
	server *Server
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (c *Component) Name() string { return componentName }

func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

func (c *Component) Health(context.Context) component.Health {
	c.server.mu.Lock()
	bound := c.server.listener != nil
	c.server.mu.Unlock()
	if !bound {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	cfg := c.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d max_body=%s", cfg.Host, cfg.Port, cfg.MaxBodySize),
		Port:    cfg.Port,
	}
}

// Routes lists the registered routes, API routes first.
func (c *Component) Routes() []component.Route {
	info := c.server.engine.Routes()
	sort.SliceStable(info, func(i, j int) bool {
		pi, pj := probePaths[info[i].Path], probePaths[info[j].Path]
		if pi != pj {
			return !pi
		}
		return info[i].Path < info[j].Path
	})
	out := make([]component.Route, 0, len(info))
	for _, r := range info {
		out = append(out, component.Route{Method: r.Method, Path: r.Path, Handler: handlerName(r.Handler)})
	}
	return out
}

// handlerName shortens Gin's handler path,
// "github.com/kbukum/scribe/api.(*Handler).Status-fm" -> "Handler.Status".
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)
	if i := strings.Index(name, ".func"); i >= 0 {
		name = name[:i]
	}
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}
