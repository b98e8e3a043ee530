// Package http provides http transport for scan sessions
package http

import (
	stdhttp "net/http"
	"time"

	"shipscan/internal/modkit/httpkit"
	"shipscan/internal/platform/net/middleware"
	"shipscan/internal/services/api/scan/domain"
)

// Options tunes the scan transport
type Options struct {
	// PacketsPerSecond caps packet posts per client ip, 0 disables the limit
	PacketsPerSecond int
}

// Register mounts scan session endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, opt Options) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.CreateSessionInput](r, "/sessions", h.create)
	httpkit.Get(r, "/sessions/{id}", h.get)
	httpkit.PutJSON[domain.ContextInput](r, "/sessions/{id}/context", h.setContext)
	r.Group(func(g httpkit.Router) {
		if opt.PacketsPerSecond > 0 {
			g.Use(middleware.RateLimitByIP(opt.PacketsPerSecond, time.Second))
		}
		httpkit.PostJSON[domain.PacketsInput](g, "/sessions/{id}/packets", h.packets)
	})
	httpkit.Post(r, "/sessions/{id}/ack", h.ack)
	httpkit.Delete(r, "/sessions/{id}/pending", h.cancelPending)
	httpkit.Delete(r, "/sessions/{id}", h.close)
	r.Get("/sessions/{id}/events", h.events)
	httpkit.Get(r, "/codes/where", h.where)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /scan/sessions Scan scanCreate
// @Summary Open a scanning session
// @Tags Scan
// @Accept json
// @Produce json
// @Param payload body domain.CreateSessionInput true "Session"
// @Success 201 {object} domain.Snapshot "created"
// @Failure 404 {object} httpkit.Envelope "shipment or box not found"
// @Router /scan/sessions [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateSessionInput) (any, error) {
	snap, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(snap), nil
}

// swagger:route GET /scan/sessions/{id} Scan scanGet
// @Summary Session snapshot
// @Tags Scan
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.Snapshot "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /scan/sessions/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route PUT /scan/sessions/{id}/context Scan scanContext
// @Summary Select shipment, box and marking code mode
// @Tags Scan
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.ContextInput true "Context"
// @Success 200 {object} domain.Snapshot "ok"
// @Router /scan/sessions/{id}/context [put]
func (h *handlers) setContext(r *stdhttp.Request, in domain.ContextInput) (any, error) {
	return h.svc.SetContext(r.Context(), httpkit.Param(r, "id"), in)
}

// swagger:route POST /scan/sessions/{id}/packets Scan scanPackets
// @Summary Feed raw scanner packets
// @Description Packets are processed in order. With wait the reply carries the snapshot after the queue drained or blocked
// @Tags Scan
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.PacketsInput true "Packets"
// @Success 202 {object} domain.EnqueueResult "accepted"
// @Success 200 {object} domain.EnqueueResult "drained"
// @Failure 429 {object} httpkit.Envelope "rate limited"
// @Router /scan/sessions/{id}/packets [post]
func (h *handlers) packets(r *stdhttp.Request, in domain.PacketsInput) (any, error) {
	res, err := h.svc.Enqueue(r.Context(), httpkit.Param(r, "id"), in)
	if err != nil {
		return nil, err
	}
	if in.Wait {
		return res, nil
	}
	return httpkit.Accepted(res), nil
}

// swagger:route POST /scan/sessions/{id}/ack Scan scanAck
// @Summary Acknowledge a duplicate marking code block
// @Tags Scan
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.AckResult "ok"
// @Router /scan/sessions/{id}/ack [post]
func (h *handlers) ack(r *stdhttp.Request) (any, error) {
	return h.svc.Ack(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route DELETE /scan/sessions/{id}/pending Scan scanCancelPending
// @Summary Drop the barcode waiting for its marking code
// @Tags Scan
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.Snapshot "ok"
// @Router /scan/sessions/{id}/pending [delete]
func (h *handlers) cancelPending(r *stdhttp.Request) (any, error) {
	return h.svc.CancelPending(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route DELETE /scan/sessions/{id} Scan scanClose
// @Summary Close a session
// @Tags Scan
// @Param id path string true "Session id"
// @Success 204 "closed"
// @Router /scan/sessions/{id} [delete]
func (h *handlers) close(r *stdhttp.Request) (any, error) {
	if err := h.svc.Close(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route GET /scan/codes/where Scan scanWhere
// @Summary Where a marking code was last recorded
// @Tags Scan
// @Produce json
// @Param code query string true "Marking code"
// @Success 200 {object} domain.ConflictLocation "ok"
// @Failure 404 {object} httpkit.Envelope "never recorded"
// @Router /scan/codes/where [get]
func (h *handlers) where(r *stdhttp.Request) (any, error) {
	return h.svc.Where(r.Context(), r.URL.Query().Get("code"))
}
