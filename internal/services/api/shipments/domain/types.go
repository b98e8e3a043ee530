// Package domain holds shipment and box types shared by the service, store and transport
package domain

import "time"

// Shipment statuses
const (
	StatusDraft   = "draft"
	StatusReady   = "ready"
	StatusShipped = "shipped"
)

// Warehouses a shipment may be addressed to
var Warehouses = []string{"Черновик", "Коледино", "Тула", "Электросталь", "Казань", "Сарапул"}

// Store level reasons raised by the shipment functions
const (
	ReasonShipmentNotFound = "SHIPMENT_NOT_FOUND"
	ReasonRowNotFound      = "ROW_NOT_FOUND"
)

// Shipment is one outbound delivery
type Shipment struct {
	ShipmentID   string    `json:"shipment_id"`
	Warehouse    string    `json:"warehouse"`
	ShipmentDate string    `json:"shipment_date" example:"2025-03-14"`
	NumberInDay  int       `json:"number_in_day"`
	Label        string    `json:"label" example:"Тула-2025-03-14-002"`
	Status       string    `json:"status"`
	DeliveryDate string    `json:"delivery_date,omitempty"`
	Locked       bool      `json:"locked"`
	Rows         int       `json:"rows"`
	CreatedAt    time.Time `json:"created_at"`
}

// Box groups rows inside a shipment
type Box struct {
	BoxID      string `json:"box_id"`
	ShipmentID string `json:"shipment_id"`
	Ordinal    int    `json:"ordinal"`
	Label      string `json:"label" example:"Box 3"`
	Rows       int    `json:"rows"`
}

// SummaryLine is the quantity of one article
type SummaryLine struct {
	Barcode      string `json:"barcode"`
	WBCode       string `json:"wb_code,omitempty"`
	SupplierCode string `json:"supplier_code,omitempty"`
	Size         string `json:"size,omitempty"`
	Qty          int    `json:"qty"`
}

// ListingRow is one scanned row
type ListingRow struct {
	ID           string    `json:"id"`
	ShipmentID   string    `json:"shipment_id"`
	BoxID        string    `json:"box_id,omitempty"`
	BoxLabel     string    `json:"box_label"`
	Barcode      string    `json:"barcode"`
	WBCode       string    `json:"wb_code,omitempty"`
	SupplierCode string    `json:"supplier_code,omitempty"`
	Size         string    `json:"size,omitempty"`
	KizCode      string    `json:"kiz_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
