package models

import (
	"fmt"
	"time"
)

// FeedbackKind is the closed set of feedback a user can leave on a target.
type FeedbackKind string

const (
	FeedbackLike     FeedbackKind = "like"
	FeedbackFavorite FeedbackKind = "favorite"
	FeedbackSave     FeedbackKind = "save"
)

// TargetType identifies which entity collection a feedback record points at.
type TargetType string

const (
	TargetLocation TargetType = "location"
	TargetRoute    TargetType = "route"
)

// validKinds scopes the feedback enumeration per target type: locations take
// like/favorite, routes take like/save.
var validKinds = map[TargetType]map[FeedbackKind]bool{
	TargetLocation: {FeedbackLike: true, FeedbackFavorite: true},
	TargetRoute:    {FeedbackLike: true, FeedbackSave: true},
}

// ValidFeedbackKind reports whether kind is accepted for the given target type.
func ValidFeedbackKind(target TargetType, kind FeedbackKind) bool {
	return validKinds[target][kind]
}

// CounterField maps a feedback kind to the denormalized counter it maintains
// on the target entity.
func CounterField(kind FeedbackKind) string {
	switch kind {
	case FeedbackLike:
		return "like_count"
	case FeedbackFavorite:
		return "favorite_count"
	case FeedbackSave:
		return "save_count"
	}
	return ""
}

// FeedbackID derives the record id deterministically from the triple, so the
// unique _id doubles as the at-most-one-record guard and deletes are point
// writes with no prior lookup.
func FeedbackID(userID, targetID string, kind FeedbackKind) string {
	return fmt.Sprintf("%s-%s-%s", kind, userID, targetID)
}

// FeedbackRecord marks that one user left one kind of feedback on one target.
// Records are created and deleted, never updated.
type FeedbackRecord struct {
	ID         string       `bson:"_id" json:"id"`
	TargetType TargetType   `bson:"target_type" json:"target_type"`
	TargetID   string       `bson:"target_id" json:"target_id"`
	UserID     string       `bson:"user_id" json:"user_id"`
	Kind       FeedbackKind `bson:"kind" json:"kind"`
	CreatedAt  time.Time    `bson:"created_at" json:"created_at"`
}
