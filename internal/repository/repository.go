package repository

import (
	"aifitness/coach-app/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProfileRepository defines the interface for interacting with profile data.
// Each user has at most one profile document.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)
}

// PlanRepository defines the interface for interacting with plan envelopes.
type PlanRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetActive(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) (*domain.Plan, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	// SaveActive persists plan as the user's single active plan of its kind:
	// an existing active plan is updated in place, otherwise a new document
	// is inserted; every other plan of that (user, kind) is then deactivated.
	SaveActive(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
	// SetExerciseImage patches one exercise image in the stored structured
	// plan and replaces the serialized planText mirror.
	SetExerciseImage(ctx context.Context, planID primitive.ObjectID, dayIndex, exerciseIndex int, imageURL, planText string) error
	// SetMealImage is the diet counterpart of SetExerciseImage.
	SetMealImage(ctx context.Context, planID primitive.ObjectID, dayIndex, mealIndex int, imageURL, planText string) error
}

// AIModelRepository is the persisted model registry the router selects from.
type AIModelRepository interface {
	Create(ctx context.Context, model *domain.AIModel) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AIModel, error)
	List(ctx context.Context) ([]domain.AIModel, error)
	Update(ctx context.Context, model *domain.AIModel) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// PickLeastUsed returns the enabled model with the minimum
	// (usageCount, updatedAt, _id), giving deterministic fair rotation.
	PickLeastUsed(ctx context.Context) (*domain.AIModel, error)
	// IncrementUsage bumps usageCount by exactly 1 via an atomic update.
	// When no document matches the id, it upserts keyed by (name, type) to
	// self-heal registry drift from stale caches.
	IncrementUsage(ctx context.Context, model *domain.AIModel) error
}

// WorkoutSessionRepository defines the interface for workout session logs.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	Update(ctx context.Context, session *domain.WorkoutSession) error
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error)
}

// ChatMessageRepository stores the assistant conversation history.
type ChatMessageRepository interface {
	Append(ctx context.Context, msg *domain.ChatMessage) (primitive.ObjectID, error)
	RecentByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.ChatMessage, error)
}
