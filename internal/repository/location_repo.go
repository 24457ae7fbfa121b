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

type LocationRepo struct {
	collection *mongo.Collection
}

func NewLocationRepo() *LocationRepo {
	return &LocationRepo{
		collection: database.GetCollection("locations"),
	}
}

func (r *LocationRepo) Create(ctx context.Context, loc *models.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	if loc.Status == "" {
		loc.Status = models.LocationActive
	}
	if loc.Photos == nil {
		loc.Photos = []string{}
	}
	now := time.Now()
	loc.CreatedAt = now
	loc.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, loc)
	return err
}

func (r *LocationRepo) FindByID(ctx context.Context, id string) (*models.Location, error) {
	var loc models.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&loc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Location, error) {
	if len(ids) == 0 {
		return []models.Location{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	locations := []models.Location{}
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// List returns locations with the given status, newest first, or most-liked
// first when sortByLikes is set.
func (r *LocationRepo) List(ctx context.Context, status string, sortByLikes bool, limit int64) ([]models.Location, error) {
	sort := bson.D{{Key: "created_at", Value: -1}}
	if sortByLikes {
		sort = bson.D{{Key: "like_count", Value: -1}}
	}
	opts := options.Find().SetSort(sort).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	locations := []models.Location{}
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// Update applies a partial $set and returns the updated document, or nil if
// the location does not exist.
func (r *LocationRepo) Update(ctx context.Context, id string, updates bson.M) (*models.Location, error) {
	updates["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var loc models.Location
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&loc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

// SoftDelete marks a location inactive rather than removing the document.
func (r *LocationRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.LocationInactive, "updated_at": time.Now()},
	})
	return err
}

// IncrementReportCount bumps report_count and returns the new value.
func (r *LocationRepo) IncrementReportCount(ctx context.Context, id string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var loc models.Location
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"report_count": 1}}, opts).Decode(&loc)
	if err != nil {
		return 0, err
	}
	return loc.ReportCount, nil
}

// FlagIfActive flips an active location to flagged. The status filter makes
// the transition race-safe: only one of several concurrent reports crossing
// the threshold performs it.
func (r *LocationRepo) FlagIfActive(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.LocationActive},
		bson.M{"$set": bson.M{"status": models.LocationFlagged, "updated_at": time.Now()}})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// Exists reports whether a non-deleted location with this id exists.
func (r *LocationRepo) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.LocationInactive}})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AdjustCounter moves a denormalized counter by delta (±1). Increments use a
// plain $inc, which initializes a missing field to zero first. Decrements are
// conditional on the counter being positive; when the condition fails the
// counter is left alone and applied is false — the floor at zero, not an
// error.
func (r *LocationRepo) AdjustCounter(ctx context.Context, id, field string, delta int) (bool, error) {
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

// TopByLikes returns the most-liked active locations for the leaderboard.
func (r *LocationRepo) TopByLikes(ctx context.Context, limit int64) ([]models.Location, error) {
	return r.List(ctx, models.LocationActive, true, limit)
}

// EnsureIndexes creates the indexes backing the list and leaderboard queries.
func (r *LocationRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "like_count", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
