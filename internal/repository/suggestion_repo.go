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

type SuggestionRepo struct {
	collection *mongo.Collection
}

func NewSuggestionRepo() *SuggestionRepo {
	return &SuggestionRepo{
		collection: database.GetCollection("suggestions"),
	}
}

func (r *SuggestionRepo) Create(ctx context.Context, s *models.Suggestion) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Photos == nil {
		s.Photos = []string{}
	}
	s.Status = models.SuggestionPending
	s.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

func (r *SuggestionRepo) FindByID(ctx context.Context, id string) (*models.Suggestion, error) {
	var s models.Suggestion
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SuggestionRepo) ListByStatus(ctx context.Context, status string, limit int64) ([]models.Suggestion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	suggestions := []models.Suggestion{}
	if err := cursor.All(ctx, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// ListBySubmitter returns a user's own suggestions across all statuses,
// newest first.
func (r *SuggestionRepo) ListBySubmitter(ctx context.Context, userID string, limit int64) ([]models.Suggestion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"submitted_by": userID}, opts)
	if err != nil {
		return nil, err
	}
	suggestions := []models.Suggestion{}
	if err := cursor.All(ctx, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// TopContributors ranks users by approved suggestion count.
func (r *SuggestionRepo) TopContributors(ctx context.Context, limit int64) ([]models.ContributorCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"status": models.SuggestionApproved}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":            "$submitted_by",
			"approved_count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "approved_count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	counts := []models.ContributorCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Review moves a pending suggestion to approved or rejected. The pending
// filter makes the transition single-shot: a second reviewer racing on the
// same suggestion gets applied=false.
func (r *SuggestionRepo) Review(ctx context.Context, id, status, reviewedBy string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SuggestionPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"reviewed_by": reviewedBy,
			"reviewed_at": time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// EnsureIndexes creates the indexes backing the moderation queue and
// per-submitter listings.
func (r *SuggestionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "submitted_by", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
