package domain

// CreateShipmentInput opens a shipment for a warehouse and day
type CreateShipmentInput struct {
	Warehouse    string `json:"warehouse" validate:"required,oneof=Черновик Коледино Тула Электросталь Казань Сарапул" example:"Тула"`
	ShipmentDate string `json:"shipment_date" validate:"required,datetime=2006-01-02" example:"2025-03-14"`
}

// CreatedShipment is the outcome of CreateShipment
type CreatedShipment struct {
	ShipmentID  string `json:"shipment_id"`
	NumberInDay int    `json:"number_in_day"`
	Label       string `json:"label"`
}

// UpdateShipmentInput changes status and/or delivery date. At least one is required
type UpdateShipmentInput struct {
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=draft ready shipped" example:"ready"`
	DeliveryDate *string `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2025-03-16"`
}

// Empty reports whether the update carries no fields
func (in UpdateShipmentInput) Empty() bool { return in.Status == nil && in.DeliveryDate == nil }

// DeleteInput confirms a destructive operation
type DeleteInput struct {
	Password string `json:"password" validate:"nonblank,max=128"`
}

// ListInput pages listings newest first
type ListInput struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=1000"`
}
