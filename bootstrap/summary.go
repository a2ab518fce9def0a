package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kbukum/scribe/component"
)

// Summary collects what a process started with and renders it as tables.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	clients         [][2]string
}

// NewSummary creates an empty Summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// TrackClient lists an outbound dependency such as the inference endpoint.
func (s *Summary) TrackClient(name, target string) {
	s.clients = append(s.clients, [2]string{name, target})
}

// Render writes the summary, pulling descriptions, routes and live health
// from registry.
func (s *Summary) Render(ctx context.Context, w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var comps []component.Component
	var health []component.Health
	if registry != nil {
		comps = registry.All()
		health = registry.HealthAll(ctx)
	}

	if len(comps) > 0 {
		tw := newTable("Component", "Type", "Details", "Health")
		for i, c := range comps {
			d := component.Description{Name: c.Name()}
			if desc, ok := c.(component.Describable); ok {
				d = desc.Describe()
				if d.Name == "" {
					d.Name = c.Name()
				}
			}
			status := ""
			if i < len(health) {
				status = string(health[i].Status)
				if health[i].Message != "" {
					status += ": " + health[i].Message
				}
			}
			tw.AppendRow(table.Row{d.Name, d.Type, d.Details, status})
		}
		fmt.Fprintln(w, tw.Render())
	}

	if len(s.clients) > 0 {
		tw := newTable("Client", "Target")
		for _, c := range s.clients {
			tw.AppendRow(table.Row{c[0], c[1]})
		}
		fmt.Fprintln(w, tw.Render())
	}

	var routes []component.Route
	for _, c := range comps {
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}
	if len(routes) > 0 {
		tw := newTable("Method", "Path", "Handler")
		for _, r := range routes {
			tw.AppendRow(table.Row{r.Method, r.Path, r.Handler})
		}
		fmt.Fprintln(w, tw.Render())
	}
}

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, len(headers))
	for i, h := range headers {
		row[i] = strings.ToUpper(h[:1]) + h[1:]
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(row)
	tw.SetColumnConfigs(configs)
	return tw
}
