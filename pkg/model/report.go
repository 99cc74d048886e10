package model

// MonthlyIncome is one month's rollup of confirmed booking revenue.
type MonthlyIncome struct {
	Month    int     `json:"month" bson:"_id"`
	Income   float64 `json:"income" bson:"income"`
	Bookings int64   `json:"bookings" bson:"bookings"`
}

// RenterStats ranks a user by confirmed booking volume.
type RenterStats struct {
	UserID     string  `json:"user_id" bson:"_id"`
	Bookings   int64   `json:"bookings" bson:"bookings"`
	TotalSpent float64 `json:"total_spent" bson:"total_spent"`
}
