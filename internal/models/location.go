package models

import "time"

// Location status values. Deletion is a soft transition to inactive; flagged
// locations are hidden from public listings until a moderator reviews them.
const (
	LocationActive   = "active"
	LocationInactive = "inactive"
	LocationFlagged  = "flagged"
)

// Location is a residential light display on the map.
type Location struct {
	ID            string    `bson:"_id" json:"id"`
	Address       string    `bson:"address" json:"address"`
	Lat           float64   `bson:"lat" json:"lat"`
	Lng           float64   `bson:"lng" json:"lng"`
	Description   string    `bson:"description" json:"description"`
	Photos        []string  `bson:"photos" json:"photos"`
	Status        string    `bson:"status" json:"status"`
	LikeCount     int       `bson:"like_count" json:"like_count"`
	FavoriteCount int       `bson:"favorite_count" json:"favorite_count"`
	ReportCount   int       `bson:"report_count" json:"report_count"`
	CreatedBy     string    `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidCoordinates checks the lat/lng bounds.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
