package model

import "time"

type VehicleState string

const (
	StateAvailable VehicleState = "AVAILABLE"
	StateReserved  VehicleState = "RESERVED"
	StateSold      VehicleState = "SOLD"
)

type Vehicle struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	ImageURL            string     `json:"image_url"`
	Model               string     `json:"model"`
	Price               uint64     `json:"price"`
	EngineCapacity      string     `json:"engine_capacity"`
	TopSpeed            string     `json:"top_speed"`
	CompanyName         string     `json:"company_name"`
	Creator             string     `json:"creator"`
	Available           bool       `json:"available"`
	Reserved            bool       `json:"reserved"`
	ReservedTo          *string    `json:"reserved_to,omitempty"`
	ReservationDeadline *time.Time `json:"reservation_deadline,omitempty"`
	Owner               *string    `json:"owner,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// State derives the lifecycle state from the availability flags.
func (v *Vehicle) State() VehicleState {
	switch {
	case v.Available:
		return StateAvailable
	case v.Reserved:
		return StateReserved
	default:
		return StateSold
	}
}

// Valid reports whether the reservation flags are mutually consistent.
func (v *Vehicle) Valid() bool {
	if v.Reserved && (v.ReservedTo == nil || v.ReservationDeadline == nil) {
		return false
	}
	if v.Available && v.Reserved {
		return false
	}
	return true
}

// Clone returns a deep copy so callers never share pointers with a store.
func (v *Vehicle) Clone() *Vehicle {
	if v == nil {
		return nil
	}
	out := *v
	if v.ReservedTo != nil {
		s := *v.ReservedTo
		out.ReservedTo = &s
	}
	if v.ReservationDeadline != nil {
		t := *v.ReservationDeadline
		out.ReservationDeadline = &t
	}
	if v.Owner != nil {
		s := *v.Owner
		out.Owner = &s
	}
	return &out
}

// VehiclePayload represents the create-vehicle payload
// swagger:model VehiclePayload
type VehiclePayload struct {
	Name           string `json:"name" validate:"required"`
	ImageURL       string `json:"image_url" validate:"required,url"`
	Model          string `json:"model" validate:"required"`
	Price          uint64 `json:"price" validate:"required,gt=0"`
	EngineCapacity string `json:"engine_capacity" validate:"required"`
	TopSpeed       string `json:"top_speed" validate:"required"`
	CompanyName    string `json:"company_name" validate:"required"`
}
