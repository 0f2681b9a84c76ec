package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
)

// FeedStore keeps the in-app notification feed.
type FeedStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uint, id string) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type MongoFeed struct {
	coll *mongo.Collection
}

func NewMongoFeed(db *mongo.Database) *MongoFeed {
	return &MongoFeed{coll: db.Collection("notifications")}
}

func (f *MongoFeed) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := f.coll.InsertOne(ctx, n)
	return err
}

func (f *MongoFeed) ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit int64) ([]models.Notification, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["read"] = false
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)

	cursor, err := f.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (f *MongoFeed) MarkRead(ctx context.Context, userID uint, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	result, err := f.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (f *MongoFeed) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result, err := f.coll.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DisabledFeed is used when MongoDB is not configured.
type DisabledFeed struct{}

func (DisabledFeed) Insert(context.Context, *models.Notification) error { return nil }

func (DisabledFeed) ListForUser(context.Context, uint, bool, int64) ([]models.Notification, error) {
	return []models.Notification{}, nil
}

func (DisabledFeed) MarkRead(context.Context, uint, string) error { return repository.ErrNotFound }

func (DisabledFeed) MarkAllRead(context.Context, uint) (int64, error) { return 0, nil }
