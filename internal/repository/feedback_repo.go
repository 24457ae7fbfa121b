package repository

import (
	"context"
	"time"

	"merrylights-backend/internal/database"
	"merrylights-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo() *FeedbackRepo {
	return &FeedbackRepo{
		collection: database.GetCollection("feedback"),
	}
}

func (r *FeedbackRepo) Get(ctx context.Context, id string) (*models.FeedbackRecord, error) {
	var rec models.FeedbackRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CreateIfAbsent inserts the record, relying on the deterministic _id for
// uniqueness. Losing the insert race to a concurrent request is reported as
// (false, nil), not an error.
func (r *FeedbackRepo) CreateIfAbsent(ctx context.Context, rec *models.FeedbackRecord) (bool, error) {
	rec.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes a record by id. Deleting an already-deleted record is a
// no-op.
func (r *FeedbackRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListByUser returns a user's records of one kind against one target type,
// newest first. Backs the favorites and saved-routes listings.
func (r *FeedbackRepo) ListByUser(ctx context.Context, userID string, target models.TargetType, kind models.FeedbackKind) ([]models.FeedbackRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"user_id":     userID,
		"target_type": target,
		"kind":        kind,
	}, opts)
	if err != nil {
		return nil, err
	}
	records := []models.FeedbackRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureIndexes creates the index backing the per-user listings. Uniqueness of
// the (user, target, kind) triple needs no extra index: it is carried by the
// deterministic _id.
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "target_type", Value: 1},
				{Key: "kind", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "target_id", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
