package domain

import "strconv"

// Category groups parts. ID is empty until the backend persists it.
type Category struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Part is a catalog part. Category is embedded on reads.
type Part struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PartNumber  string   `json:"partNumber"`
	Category    Category `json:"category"`
}

// PartPayload is the create/update body the backend expects for a part: the
// category travels as a bare foreign key.
type PartPayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PartNumber  string `json:"partNumber"`
	CategoryID  string `json:"categoryId"`
}

// Payload flattens the embedded category into CategoryID.
func (p Part) Payload() PartPayload {
	return PartPayload{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PartNumber:  p.PartNumber,
		CategoryID:  p.Category.ID,
	}
}

// VehicleModel is a vehicle a part can fit. Year is optional.
type VehicleModel struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Year         *int   `json:"year,omitempty"`
	Description  string `json:"description,omitempty"`
}

// DisplayName renders "Manufacturer Name (Year)" for dropdowns and lists.
func (v VehicleModel) DisplayName() string {
	s := v.Manufacturer + " " + v.Name
	if v.Year != nil {
		s += " (" + strconv.Itoa(*v.Year) + ")"
	}
	return s
}

// PartVehicleCompatibility links a part to a vehicle model. Rows are only
// created and deleted, never updated.
type PartVehicleCompatibility struct {
	ID           string       `json:"id,omitempty"`
	Part         Part         `json:"part"`
	VehicleModel VehicleModel `json:"vehicleModel"`
	Notes        string       `json:"notes,omitempty"`
}

// CompatibilityRequest is the body of the add-compatibility call.
type CompatibilityRequest struct {
	PartID         string `json:"partId"`
	VehicleModelID string `json:"vehicleModelId"`
	Notes          string `json:"notes,omitempty"`
}
