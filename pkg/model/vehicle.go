package model

import "time"

// Vehicle is a catalog entry for one rentable model. The physical,
// individually reservable units are the entries of PlateNumbers; every
// plate belongs to exactly one vehicle (enforced by a unique multikey
// index on plate_numbers).
type Vehicle struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Brand            string    `json:"brand" bson:"brand" validate:"required,min=2,max=50"`
	Model            string    `json:"model" bson:"model" validate:"required,min=1,max=50"`
	Image            string    `json:"image,omitempty" bson:"image,omitempty" validate:"omitempty,url"`
	PricePerDay      float64   `json:"price_per_day" bson:"price_per_day" validate:"required,gt=0"`
	VehicleType      string    `json:"vehicle_type" bson:"vehicle_type" validate:"required,oneof=sedan suv hatchback 'station vagon' mpv"`
	Doors            int       `json:"doors" bson:"doors" validate:"required,min=2,max=5"`
	Passengers       int       `json:"passengers" bson:"passengers" validate:"required,min=2,max=12"`
	TransmissionType string    `json:"transmission_type" bson:"transmission_type" validate:"required,oneof=automatic manual"`
	FuelType         string    `json:"fuel_type" bson:"fuel_type" validate:"required,oneof=gasoline diesel electric hybrid"`
	PlateNumbers     []string  `json:"plate_numbers" bson:"plate_numbers" validate:"required,min=1,unique,dive,plate_number"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// VehicleUpdate carries a partial update; nil / zero fields are left unchanged.
type VehicleUpdate struct {
	Brand            string   `json:"brand,omitempty" validate:"omitempty,min=2,max=50"`
	Model            string   `json:"model,omitempty" validate:"omitempty,min=1,max=50"`
	Image            string   `json:"image,omitempty" validate:"omitempty,url"`
	PricePerDay      *float64 `json:"price_per_day,omitempty" validate:"omitempty,gt=0"`
	VehicleType      string   `json:"vehicle_type,omitempty" validate:"omitempty,oneof=sedan suv hatchback 'station vagon' mpv"`
	Doors            *int     `json:"doors,omitempty" validate:"omitempty,min=2,max=5"`
	Passengers       *int     `json:"passengers,omitempty" validate:"omitempty,min=2,max=12"`
	TransmissionType string   `json:"transmission_type,omitempty" validate:"omitempty,oneof=automatic manual"`
	FuelType         string   `json:"fuel_type,omitempty" validate:"omitempty,oneof=gasoline diesel electric hybrid"`
	PlateNumbers     []string `json:"plate_numbers,omitempty" validate:"omitempty,min=1,unique,dive,plate_number"`
}

// VehicleFilter narrows catalog listings. StartDate/EndDate, when both set,
// restrict the result to vehicles with at least one plate free for the range.
type VehicleFilter struct {
	VehicleTypes     []string
	FuelType         string
	TransmissionType string
	Passengers       int
	StartDate        *time.Time
	EndDate          *time.Time
}
