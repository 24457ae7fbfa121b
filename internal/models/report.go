package models

import "time"

// Report records one user's claim that a location is inactive or wrong.
// Reports feed the report_count counter on the location; at the flag
// threshold the location is pulled from public listings for review.
type Report struct {
	ID         string    `bson:"_id" json:"id"`
	LocationID string    `bson:"location_id" json:"location_id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Reason     string    `bson:"reason" json:"reason"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
