package handlers

import (
	"context"

	"merrylights-backend/internal/feedback"
	"merrylights-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Narrow store views consumed by the handlers, satisfied by the engine and the
// repositories. Declared here so handler tests can substitute fakes without a
// database.

type FeedbackToggler interface {
	Toggle(ctx context.Context, userID string, target models.TargetType, targetID string, kind models.FeedbackKind) (feedback.Result, error)
}

type FeedbackReader interface {
	Get(ctx context.Context, id string) (*models.FeedbackRecord, error)
	ListByUser(ctx context.Context, userID string, target models.TargetType, kind models.FeedbackKind) ([]models.FeedbackRecord, error)
}

type LocationReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Location, error)
}

type RouteReader interface {
	FindByID(ctx context.Context, id string) (*models.Route, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Route, error)
}

type RouteStore interface {
	Create(ctx context.Context, route *models.Route) error
	FindByID(ctx context.Context, id string) (*models.Route, error)
	List(ctx context.Context, limit int64) ([]models.Route, error)
	ListByCreator(ctx context.Context, userID string, limit int64) ([]models.Route, error)
	Update(ctx context.Context, id string, updates bson.M) (*models.Route, error)
	SoftDelete(ctx context.Context, id string) error
}

type SuggestionStore interface {
	Create(ctx context.Context, s *models.Suggestion) error
	FindByID(ctx context.Context, id string) (*models.Suggestion, error)
	ListByStatus(ctx context.Context, status string, limit int64) ([]models.Suggestion, error)
	ListBySubmitter(ctx context.Context, userID string, limit int64) ([]models.Suggestion, error)
	Review(ctx context.Context, id, status, reviewedBy string) (bool, error)
}

// LocationWriter is the slice of the location repo the suggestion flow needs:
// publish an approved suggestion, and retract it again if the approval loses a
// review race.
type LocationWriter interface {
	Create(ctx context.Context, loc *models.Location) error
	SoftDelete(ctx context.Context, id string) error
}

type ContributorSource interface {
	TopContributors(ctx context.Context, limit int64) ([]models.ContributorCount, error)
}

type UserReader interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.User, error)
}
