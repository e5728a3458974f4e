package mongo

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const chatCollectionName = "chat_messages"

// mongoChatRepository implements repository.ChatMessageRepository.
type mongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new chat message repository.
func NewMongoChatRepository(db *mongo.Database) repository.ChatMessageRepository {
	return &mongoChatRepository{
		collection: db.Collection(chatCollectionName),
	}
}

// Append stores one conversation turn.
func (r *mongoChatRepository) Append(ctx context.Context, msg *domain.ChatMessage) (primitive.ObjectID, error) {
	if msg.UserID == primitive.NilObjectID || msg.Role == "" {
		return primitive.NilObjectID, errors.New("chat message requires userId and role")
	}

	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted message ID")
	}
	return insertedID, nil
}

// RecentByUserID returns the latest messages in chronological order.
func (r *mongoChatRepository) RecentByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []domain.ChatMessage
	if err = cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}

	// Reverse into chronological order for the caller.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// EnsureChatIndexes creates necessary indexes. Call during startup.
func EnsureChatIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal; queries still work unindexed.
	}
}
