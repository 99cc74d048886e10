package model

import "time"

// VehicleLock is an advisory lock serializing booking admission for one
// vehicle model. The _id doubles as the lock key; a duplicate-key error on
// insert means another request holds the lock. A TTL index on expires_at
// reaps locks abandoned by crashed processes.
type VehicleLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
