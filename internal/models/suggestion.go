package models

import "time"

// Suggestion status values.
const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionRejected = "rejected"
)

// Suggestion is a community-submitted location awaiting moderation. Approval
// turns it into a Location; the suggestion itself keeps the review trail.
type Suggestion struct {
	ID               string     `bson:"_id" json:"id"`
	Address          string     `bson:"address" json:"address"`
	Description      string     `bson:"description" json:"description"`
	Photos           []string   `bson:"photos" json:"photos"`
	Status           string     `bson:"status" json:"status"`
	SubmittedBy      string     `bson:"submitted_by" json:"submitted_by"`
	SubmittedByEmail string     `bson:"submitted_by_email" json:"submitted_by_email"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	ReviewedAt       *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewedBy       string     `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
}

// ContributorCount is one row of the top-contributors leaderboard: a user and
// how many of their suggestions were approved.
type ContributorCount struct {
	UserID        string `bson:"_id" json:"user_id"`
	ApprovedCount int    `bson:"approved_count" json:"approved_count"`
}
