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

const aiModelCollectionName = "ai_models"

// mongoAIModelRepository implements repository.AIModelRepository.
type mongoAIModelRepository struct {
	collection *mongo.Collection
}

// NewMongoAIModelRepository creates a new model registry repository.
func NewMongoAIModelRepository(db *mongo.Database) repository.AIModelRepository {
	return &mongoAIModelRepository{
		collection: db.Collection(aiModelCollectionName),
	}
}

// Create inserts a new registry entry.
func (r *mongoAIModelRepository) Create(ctx context.Context, model *domain.AIModel) (primitive.ObjectID, error) {
	if model.Name == "" || model.Type == "" {
		return primitive.NilObjectID, errors.New("model requires name and type")
	}

	model.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	model.CreatedAt = now
	model.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, model)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted model ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single registry entry.
func (r *mongoAIModelRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AIModel, error) {
	var model domain.AIModel
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&model)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &model, nil
}

// List returns the full registry, in selection order.
func (r *mongoAIModelRepository) List(ctx context.Context) ([]domain.AIModel, error) {
	var models []domain.AIModel
	findOptions := options.Find().SetSort(selectionOrder())

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// Update rewrites the mutable fields of a registry entry.
// UsageCount is owned by IncrementUsage and never written here.
func (r *mongoAIModelRepository) Update(ctx context.Context, model *domain.AIModel) error {
	if model.ID == primitive.NilObjectID {
		return errors.New("model ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"name":      model.Name,
		"type":      model.Type,
		"enabled":   model.Enabled,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": model.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a registry entry.
func (r *mongoAIModelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// PickLeastUsed returns the enabled model with the minimum
// (usageCount, updatedAt, _id). The tie-break chain makes selection
// deterministic under identical usage counts.
func (r *mongoAIModelRepository) PickLeastUsed(ctx context.Context) (*domain.AIModel, error) {
	var model domain.AIModel
	filter := bson.M{"enabled": bson.M{"$ne": false}}
	opts := options.FindOne().SetSort(selectionOrder())

	err := r.collection.FindOne(ctx, filter, opts).Decode(&model)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &model, nil
}

// IncrementUsage bumps usageCount atomically. When the id no longer matches
// (stale registry cache), it falls back to an upsert keyed by (name, type)
// so the counter is never lost.
func (r *mongoAIModelRepository) IncrementUsage(ctx context.Context, model *domain.AIModel) error {
	now := time.Now().UTC()
	inc := bson.M{
		"$inc": bson.M{"usageCount": 1},
		"$set": bson.M{"updatedAt": now},
	}

	if model.ID != primitive.NilObjectID {
		result, err := r.collection.UpdateOne(ctx, bson.M{"_id": model.ID}, inc)
		if err != nil {
			return err
		}
		if result.MatchedCount > 0 {
			return nil
		}
	}

	filter := bson.M{"name": model.Name, "type": model.Type}
	upsert := bson.M{
		"$inc": bson.M{"usageCount": 1},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"name":      model.Name,
			"type":      model.Type,
			"enabled":   true,
			"createdAt": now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, upsert, options.Update().SetUpsert(true))
	return err
}

func selectionOrder() bson.D {
	return bson.D{
		{Key: "usageCount", Value: 1},
		{Key: "updatedAt", Value: 1},
		{Key: "_id", Value: 1},
	}
}

// EnsureAIModelIndexes creates necessary indexes. Call during startup.
func EnsureAIModelIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "enabled", Value: 1}, {Key: "usageCount", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal; queries still work unindexed.
	}
}
