// internal/interface/repository/mongo_price_event_repo.go
package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPriceEventRepository implements the PriceEventRepository interface
type MongoPriceEventRepository struct {
	collection *mongo.Collection
}

// NewMongoPriceEventRepository creates a new MongoDB price event repository
func NewMongoPriceEventRepository(db *mongo.Database) repository.PriceEventRepository {
	collection := db.Collection("priceDropEvents")

	// Create indexes for better performance
	ctx := context.Background()

	// Compound index for reading a watch's drop history newest first
	watchHistoryIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "watchId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}

	// Index on userId for per-user reporting
	userIndex := mongo.IndexModel{
		Keys: bson.M{"userId": 1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		watchHistoryIndex,
		userIndex,
	})

	return &MongoPriceEventRepository{
		collection: collection,
	}
}

// Save appends a price drop event to the audit log
func (r *MongoPriceEventRepository) Save(ctx context.Context, event *entity.PriceDropEvent) error {
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// ListByWatch returns the most recent drop events for a watch,
// newest first
func (r *MongoPriceEventRepository) ListByWatch(ctx context.Context, watchID string, limit int) ([]*entity.PriceDropEvent, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"watchId": watchID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*entity.PriceDropEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
