package repository

import (
	"context"
	"time"

	"merrylights-backend/internal/database"
	"merrylights-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type RouteRepo struct {
	collection *mongo.Collection
}

func NewRouteRepo() *RouteRepo {
	return &RouteRepo{
		collection: database.GetCollection("routes"),
	}
}

func (r *RouteRepo) Create(ctx context.Context, route *models.Route) error {
	if route.ID == "" {
		route.ID = uuid.New().String()
	}
	if route.Status == "" {
		route.Status = models.RouteActive
	}
	now := time.Now()
	route.CreatedAt = now
	route.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, route)
	return err
}

func (r *RouteRepo) FindByID(ctx context.Context, id string) (*models.Route, error) {
	var route models.Route
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&route)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Route, error) {
	if len(ids) == 0 {
		return []models.Route{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	routes := []models.Route{}
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// List returns active routes, newest first.
func (r *RouteRepo) List(ctx context.Context, limit int64) ([]models.Route, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.RouteActive}, opts)
	if err != nil {
		return nil, err
	}
	routes := []models.Route{}
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// ListByCreator returns a user's own routes regardless of status, newest
// first. Drafts and soft-deleted routes stay visible to their creator.
func (r *RouteRepo) ListByCreator(ctx context.Context, userID string, limit int64) ([]models.Route, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"created_by": userID}, opts)
	if err != nil {
		return nil, err
	}
	routes := []models.Route{}
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Update applies a partial $set and returns the updated document, or nil if
// the route does not exist.
func (r *RouteRepo) Update(ctx context.Context, id string, updates bson.M) (*models.Route, error) {
	updates["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var route models.Route
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&route)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

// SoftDelete marks a route inactive rather than removing the document.
func (r *RouteRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.RouteInactive, "updated_at": time.Now()},
	})
	return err
}

// Exists reports whether a route document with this id exists. Visibility of
// non-active routes is the handler's concern; a soft-deleted route still
// anchors the feedback records already pointing at it.
func (r *RouteRepo) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AdjustCounter has the same contract as LocationRepo.AdjustCounter: plain
// $inc for increments, a positive-value condition flooring decrements at zero.
func (r *RouteRepo) AdjustCounter(ctx context.Context, id, field string, delta int) (bool, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter[field] = bson.M{"$gt": 0}
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// TopByLikes returns the most-liked active routes for the leaderboard.
func (r *RouteRepo) TopByLikes(ctx context.Context, limit int64) ([]models.Route, error) {
	opts := options.Find().SetSort(bson.D{{Key: "like_count", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.RouteActive}, opts)
	if err != nil {
		return nil, err
	}
	routes := []models.Route{}
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// EnsureIndexes creates the indexes backing the list and leaderboard queries.
func (r *RouteRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "like_count", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
