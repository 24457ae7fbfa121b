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

type ReportRepo struct {
	collection *mongo.Collection
}

func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		collection: database.GetCollection("reports"),
	}
}

func (r *ReportRepo) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	report.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, report)
	return err
}

// ListByLocation returns the reports filed against a location, newest first.
// Used by moderators reviewing a flagged display.
func (r *ReportRepo) ListByLocation(ctx context.Context, locationID string, limit int64) ([]models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"location_id": locationID}, opts)
	if err != nil {
		return nil, err
	}
	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// EnsureIndexes creates the per-location lookup index.
func (r *ReportRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
