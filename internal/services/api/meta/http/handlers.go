// Package http serves liveness, readiness and runtime probes under /meta
package http

import (
	"context"
	"net/http"
	"time"

	"shipscan/internal/core/version"
	"shipscan/internal/modkit/httpkit"
)

// Check is one dependency probed by /meta/ready. A nil Ping means the
// dependency is not configured
type Check struct {
	Name     string
	Optional bool
	Ping     func(context.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	Timeout     time.Duration // per readiness request, 2s when zero

	// runtime probes, nil when the component is not wired
	LiveSessions func() int
	JournalState func() string
}

// Check states
const (
	StateOK       = "ok"
	StateFail     = "fail"
	StateSkipped  = "skipped"
	StateDegraded = "degraded"
)

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	httpkit.Get(r, "/health", d.health)
	httpkit.Get(r, "/ready", d.ready)
	httpkit.Get(r, "/version", func(*http.Request) (any, error) { return version.Info(), nil })
	httpkit.Get(r, "/runtime", d.runtime)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"shipscan-api"`
	Started string `json:"started" example:"2026-03-02T07:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"` // seconds
}

// CheckResult is the outcome of one Check
type CheckResult struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string        `json:"status" example:"ok"` // ok degraded fail
	Checks []CheckResult `json:"checks"`
}

// RuntimeResponse reports in process state
type RuntimeResponse struct {
	LiveSessions int               `json:"live_sessions" example:"3"`
	Journal      string            `json:"journal"       example:"closed"` // closed open half-open disabled
	Build        version.BuildInfo `json:"build"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Liveness and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (d Deps) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: d.ServiceName,
		Started: d.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(d.StartedAt) / time.Second),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness with dependency checks
// @Description A failing required check fails readiness. An optional failure
// @Description or a missing required dependency only degrades it
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (d Deps) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), d.Timeout)
	defer cancel()

	out := ReadyResponse{Status: StateOK, Checks: make([]CheckResult, 0, len(d.Checks))}
	for _, c := range d.Checks {
		res := CheckResult{Name: c.Name, Status: StateOK}
		switch {
		case c.Ping == nil:
			res.Status = StateSkipped
			if !c.Optional {
				out.Status = worse(out.Status, StateDegraded)
			}
		default:
			if err := c.Ping(ctx); err != nil {
				res.Status, res.Error = StateFail, err.Error()
				if c.Optional {
					out.Status = worse(out.Status, StateDegraded)
				} else {
					out.Status = StateFail
				}
			}
		}
		out.Checks = append(out.Checks, res)
	}
	return out, nil
}

func worse(cur, next string) string {
	if cur == StateFail {
		return cur
	}
	return next
}

// swagger:route GET /meta/runtime Meta metaRuntime
// @Summary Live sessions and journal breaker state
// @Tags Meta
// @Produce json
// @Success 200 {object} RuntimeResponse
// @Router /meta/runtime [get]
func (d Deps) runtime(*http.Request) (any, error) {
	out := RuntimeResponse{Journal: "disabled", Build: version.Info()}
	if d.LiveSessions != nil {
		out.LiveSessions = d.LiveSessions()
	}
	if d.JournalState != nil {
		out.Journal = d.JournalState()
	}
	return out, nil
}
