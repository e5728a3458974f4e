package mongo

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository.
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// GetByID retrieves a single plan envelope by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetActive retrieves the user's active plan of the given kind.
func (r *mongoPlanRepository) GetActive(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) (*domain.Plan, error) {
	var plan domain.Plan
	filter := bson.M{"userId": userID, "kind": kind, "isActive": true}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByUserID retrieves all plans for a user, newest first.
func (r *mongoPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	var plans []domain.Plan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// SaveActive persists plan as the single active plan for (userId, kind).
// Every other plan of that kind is deactivated first, then the active plan
// document is updated in place when one exists, or inserted. Ordering the
// mass-deactivation before the upsert means the window between the two steps
// can hold zero active plans but never two.
func (r *mongoPlanRepository) SaveActive(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	if plan.UserID == primitive.NilObjectID || plan.Kind == "" {
		return nil, errors.New("plan requires userId and kind")
	}

	now := time.Now().UTC()

	existing, err := r.GetActive(ctx, plan.UserID, plan.Kind)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	deactivate := bson.M{
		"userId":   plan.UserID,
		"kind":     plan.Kind,
		"isActive": true,
	}
	if existing != nil {
		deactivate["_id"] = bson.M{"$ne": existing.ID}
	}
	if _, err := r.collection.UpdateMany(ctx, deactivate,
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}}); err != nil {
		return nil, err
	}

	if existing != nil {
		// Update in place, preserving a user-customized title/description
		// when the regenerated plan does not supply its own.
		if plan.Title == "" {
			plan.Title = existing.Title
		}
		if plan.Description == "" {
			plan.Description = existing.Description
		}
		update := bson.M{"$set": bson.M{
			"title":         plan.Title,
			"description":   plan.Description,
			"planText":      plan.PlanText,
			"workoutPlan":   plan.WorkoutPlan,
			"dietPlan":      plan.DietPlan,
			"model":         plan.Model,
			"promptVersion": plan.PromptVersion,
			"isActive":      true,
			"updatedAt":     now,
		}}
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": existing.ID}, update); err != nil {
			return nil, err
		}
		return r.GetByID(ctx, existing.ID)
	}

	plan.ID = primitive.NewObjectID()
	plan.IsActive = true
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// SetExerciseImage patches one exercise's imageUrl inside the stored
// structured plan and refreshes the serialized planText mirror.
func (r *mongoPlanRepository) SetExerciseImage(ctx context.Context, planID primitive.ObjectID, dayIndex, exerciseIndex int, imageURL, planText string) error {
	field := fmt.Sprintf("workoutPlan.days.%d.exercises.%d.imageUrl", dayIndex, exerciseIndex)
	return r.setImageField(ctx, planID, field, imageURL, planText)
}

// SetMealImage patches one meal's imageUrl inside the stored diet plan.
func (r *mongoPlanRepository) SetMealImage(ctx context.Context, planID primitive.ObjectID, dayIndex, mealIndex int, imageURL, planText string) error {
	field := fmt.Sprintf("dietPlan.days.%d.meals.%d.imageUrl", dayIndex, mealIndex)
	return r.setImageField(ctx, planID, field, imageURL, planText)
}

func (r *mongoPlanRepository) setImageField(ctx context.Context, planID primitive.ObjectID, field, imageURL, planText string) error {
	update := bson.M{"$set": bson.M{
		field:       imageURL,
		"planText":  planText,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: the user's active plan of a kind.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "kind", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal; queries still work unindexed.
	}
}
