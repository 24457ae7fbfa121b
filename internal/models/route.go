package models

import "time"

// Route status values.
const (
	RouteActive   = "active"
	RouteInactive = "inactive"
)

// Route is a curated multi-stop trail of locations.
type Route struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Stops       []string  `bson:"stops" json:"stops"`
	Status      string    `bson:"status" json:"status"`
	LikeCount   int       `bson:"like_count" json:"like_count"`
	SaveCount   int       `bson:"save_count" json:"save_count"`
	CreatedBy   string    `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// VisibleTo reports whether a user may see (and leave feedback on) the route.
// Non-active routes are visible only to their creator.
func (rt *Route) VisibleTo(userID string) bool {
	return rt.Status == RouteActive || rt.CreatedBy == userID
}
