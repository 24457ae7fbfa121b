package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedbackID(t *testing.T) {
	assert.Equal(t, "like-u1-loc-1", FeedbackID("u1", "loc-1", FeedbackLike))
	assert.Equal(t, "save-u2-route-9", FeedbackID("u2", "route-9", FeedbackSave))

	// Same triple always yields the same id; differing in any component
	// yields a different one.
	assert.Equal(t, FeedbackID("u1", "loc-1", FeedbackLike), FeedbackID("u1", "loc-1", FeedbackLike))
	assert.NotEqual(t, FeedbackID("u1", "loc-1", FeedbackLike), FeedbackID("u1", "loc-1", FeedbackFavorite))
	assert.NotEqual(t, FeedbackID("u1", "loc-1", FeedbackLike), FeedbackID("u2", "loc-1", FeedbackLike))
}

func TestValidFeedbackKind(t *testing.T) {
	assert.True(t, ValidFeedbackKind(TargetLocation, FeedbackLike))
	assert.True(t, ValidFeedbackKind(TargetLocation, FeedbackFavorite))
	assert.False(t, ValidFeedbackKind(TargetLocation, FeedbackSave))

	assert.True(t, ValidFeedbackKind(TargetRoute, FeedbackLike))
	assert.True(t, ValidFeedbackKind(TargetRoute, FeedbackSave))
	assert.False(t, ValidFeedbackKind(TargetRoute, FeedbackFavorite))

	assert.False(t, ValidFeedbackKind(TargetLocation, FeedbackKind("upvote")))
	assert.False(t, ValidFeedbackKind(TargetType("comment"), FeedbackLike))
}

func TestCounterField(t *testing.T) {
	assert.Equal(t, "like_count", CounterField(FeedbackLike))
	assert.Equal(t, "favorite_count", CounterField(FeedbackFavorite))
	assert.Equal(t, "save_count", CounterField(FeedbackSave))
	assert.Empty(t, CounterField(FeedbackKind("upvote")))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(40.7128, -74.0060))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.True(t, ValidCoordinates(90, -180))
	assert.True(t, ValidCoordinates(0, 0))

	assert.False(t, ValidCoordinates(90.1, 0))
	assert.False(t, ValidCoordinates(-90.1, 0))
	assert.False(t, ValidCoordinates(0, 180.1))
	assert.False(t, ValidCoordinates(0, -180.1))
}

func TestRouteVisibleTo(t *testing.T) {
	active := &Route{Status: RouteActive, CreatedBy: "u1"}
	assert.True(t, active.VisibleTo("u1"))
	assert.True(t, active.VisibleTo("u2"))

	inactive := &Route{Status: RouteInactive, CreatedBy: "u1"}
	assert.True(t, inactive.VisibleTo("u1"))
	assert.False(t, inactive.VisibleTo("u2"))
}
