package model

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking reserves one plate of one vehicle model for the half-open date
// interval [StartDate, EndDate). Invariant: for a given plate, no two
// bookings with status pending or confirmed may overlap.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID      string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	VehicleID   string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	PlateNumber string    `json:"plate_number" bson:"plate_number" validate:"required,plate_number"`
	StartDate   time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	TotalPrice  float64   `json:"total_price" bson:"total_price" validate:"required,gt=0"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// BookingRequest is the caller-supplied admission request. The plate, price
// and owner are filled in by the booking core, never by the caller.
type BookingRequest struct {
	VehicleID string    `json:"vehicle_id" validate:"required,mongodb"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// OwnerID returns the owning user's identifier. Ownership is stored as a
// plain id string, never a populated sub-document, so callers always compare
// against the same shape.
func (b *Booking) OwnerID() string {
	return b.UserID
}

// ValidTargetStatus reports whether s names a status a caller may request.
// A booking is created pending; callers can only ask for confirmed or cancelled.
func ValidTargetStatus(s string) bool {
	return s == StatusConfirmed || s == StatusCancelled
}
