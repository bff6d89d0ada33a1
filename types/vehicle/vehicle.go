package vehicle

// CreateRequest registers a vehicle for the requester.
type CreateRequest struct {
	PlateNumber string `json:"plate_number"`
	Model       string `json:"model"`
	MakeYear    int    `json:"make_year"`
	VehicleType string `json:"vehicle_type,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateRequest changes the mutable fields of a registered vehicle.
type UpdateRequest struct {
	Model       string `json:"model,omitempty"`
	MakeYear    int    `json:"make_year,omitempty"`
	VehicleType string `json:"vehicle_type,omitempty"`
	Color       string `json:"color,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}
