// Package http provides http transport for shipments and boxes
package http

import (
	stdhttp "net/http"
	"strconv"

	"shipscan/internal/modkit/httpkit"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/services/api/shipments/domain"
)

// Register mounts shipment endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.CreateShipmentInput](r, "/", h.create)
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.PatchJSON[domain.UpdateShipmentInput](r, "/{id}", h.update)
	httpkit.DeleteJSON[domain.DeleteInput](r, "/{id}", h.deleteShipment)

	httpkit.Post(r, "/{id}/boxes", h.createBox)
	httpkit.Get(r, "/{id}/boxes", h.listBoxes)
	httpkit.Get(r, "/{id}/summary", h.summary)
	httpkit.Get(r, "/{id}/listing", h.listing)

	httpkit.DeleteJSON[domain.DeleteInput](r, "/boxes/{id}", h.deleteBox)
	httpkit.Get(r, "/boxes/{id}/summary", h.boxSummary)
	httpkit.Delete(r, "/rows/{id}", h.deleteRow)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /shipments Shipments shipmentsCreate
// @Summary Create a shipment
// @Tags Shipments
// @Accept json
// @Produce json
// @Param payload body domain.CreateShipmentInput true "Shipment"
// @Success 201 {object} domain.CreatedShipment "created"
// @Router /shipments [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateShipmentInput) (any, error) {
	out, err := h.svc.CreateShipment(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// swagger:route GET /shipments Shipments shipmentsList
// @Summary Newest shipments
// @Tags Shipments
// @Produce json
// @Param limit query int false "Max rows"
// @Success 200 {array} domain.Shipment "ok"
// @Router /shipments [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ListShipments(r.Context(), in)
}

// swagger:route GET /shipments/{id} Shipments shipmentsGet
// @Summary One shipment with its lock state
// @Tags Shipments
// @Produce json
// @Param id path string true "Shipment id"
// @Success 200 {object} domain.Shipment "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /shipments/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.GetShipment(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route PATCH /shipments/{id} Shipments shipmentsUpdate
// @Summary Change status or delivery date
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment id"
// @Param payload body domain.UpdateShipmentInput true "Changes"
// @Success 200 {object} domain.Shipment "ok"
// @Router /shipments/{id} [patch]
func (h *handlers) update(r *stdhttp.Request, in domain.UpdateShipmentInput) (any, error) {
	return h.svc.UpdateShipment(r.Context(), httpkit.Param(r, "id"), in)
}

// swagger:route DELETE /shipments/{id} Shipments shipmentsDelete
// @Summary Delete a shipment with its boxes and rows
// @Tags Shipments
// @Accept json
// @Param id path string true "Shipment id"
// @Param payload body domain.DeleteInput true "Password"
// @Success 204 "deleted"
// @Failure 403 {object} httpkit.Envelope "wrong password"
// @Router /shipments/{id} [delete]
func (h *handlers) deleteShipment(r *stdhttp.Request, in domain.DeleteInput) (any, error) {
	if err := h.svc.DeleteShipment(r.Context(), httpkit.Param(r, "id"), in); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route POST /shipments/{id}/boxes Shipments boxesCreate
// @Summary Append the next box
// @Tags Shipments
// @Produce json
// @Param id path string true "Shipment id"
// @Success 201 {object} domain.Box "created"
// @Router /shipments/{id}/boxes [post]
func (h *handlers) createBox(r *stdhttp.Request) (any, error) {
	b, err := h.svc.CreateBox(r.Context(), httpkit.Param(r, "id"))
	if err != nil {
		return nil, err
	}
	return httpkit.Created(b), nil
}

// swagger:route GET /shipments/{id}/boxes Shipments boxesList
// @Summary Boxes of a shipment
// @Tags Shipments
// @Produce json
// @Param id path string true "Shipment id"
// @Success 200 {array} domain.Box "ok"
// @Router /shipments/{id}/boxes [get]
func (h *handlers) listBoxes(r *stdhttp.Request) (any, error) {
	return h.svc.ListBoxes(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route GET /shipments/{id}/summary Shipments shipmentsSummary
// @Summary Quantities per article
// @Tags Shipments
// @Produce json
// @Param id path string true "Shipment id"
// @Success 200 {array} domain.SummaryLine "ok"
// @Router /shipments/{id}/summary [get]
func (h *handlers) summary(r *stdhttp.Request) (any, error) {
	return h.svc.ShipmentSummary(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route GET /shipments/{id}/listing Shipments shipmentsListing
// @Summary Scanned rows, newest first
// @Tags Shipments
// @Produce json
// @Param id path string true "Shipment id"
// @Param limit query int false "Max rows"
// @Success 200 {array} domain.ListingRow "ok"
// @Router /shipments/{id}/listing [get]
func (h *handlers) listing(r *stdhttp.Request) (any, error) {
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Listing(r.Context(), httpkit.Param(r, "id"), in)
}

// swagger:route DELETE /shipments/boxes/{id} Shipments boxesDelete
// @Summary Delete a box and its rows
// @Tags Shipments
// @Accept json
// @Param id path string true "Box id"
// @Param payload body domain.DeleteInput true "Password"
// @Success 204 "deleted"
// @Failure 403 {object} httpkit.Envelope "wrong password"
// @Router /shipments/boxes/{id} [delete]
func (h *handlers) deleteBox(r *stdhttp.Request, in domain.DeleteInput) (any, error) {
	if err := h.svc.DeleteBox(r.Context(), httpkit.Param(r, "id"), in); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route GET /shipments/boxes/{id}/summary Shipments boxesSummary
// @Summary Quantities per article in one box
// @Tags Shipments
// @Produce json
// @Param id path string true "Box id"
// @Success 200 {array} domain.SummaryLine "ok"
// @Router /shipments/boxes/{id}/summary [get]
func (h *handlers) boxSummary(r *stdhttp.Request) (any, error) {
	return h.svc.BoxSummary(r.Context(), httpkit.Param(r, "id"))
}

// swagger:route DELETE /shipments/rows/{id} Shipments rowsDelete
// @Summary Delete one scanned row
// @Tags Shipments
// @Param id path string true "Row id"
// @Success 204 "deleted"
// @Router /shipments/rows/{id} [delete]
func (h *handlers) deleteRow(r *stdhttp.Request) (any, error) {
	if err := h.svc.DeleteRow(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

func listInput(r *stdhttp.Request) (domain.ListInput, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return domain.ListInput{}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 1000 {
		return domain.ListInput{}, perr.WithField(perr.InvalidArgf("limit must be between 1 and 1000"), "limit")
	}
	return domain.ListInput{Limit: n}, nil
}
