package service

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanExerciseNotFound = errors.New("exercise not found")
	ErrMealNotFound         = errors.New("meal not found")
	ErrImageResponseInvalid = errors.New("image response invalid")
	ErrImageURLInvalid      = errors.New("image url invalid")
	ErrGenerationFailed     = errors.New("plan generation failed")
)

// maxGenerationAttempts bounds the validate-and-retry loop for workout
// plans. Each attempt re-picks a model, so a malformed response from one
// provider is usually retried against a different one.
const maxGenerationAttempts = 3

const (
	workoutPromptVersion = "workout-v1"
	dietPromptVersion    = "diet-v1"
)

// AIRouter is the slice of the router the plan service depends on.
type AIRouter interface {
	Ask(ctx context.Context, msgs []ai.Message, opts ai.Options) (*ai.Answer, error)
}

// PlanService generates, stores and enriches plans.
type PlanService interface {
	GenerateWorkoutPlan(ctx context.Context, userID primitive.ObjectID, note string) (*domain.Plan, error)
	GenerateDietPlan(ctx context.Context, userID primitive.ObjectID, note string) (*domain.Plan, error)
	GetActivePlan(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) (*domain.Plan, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	AttachExerciseImage(ctx context.Context, userID, planID primitive.ObjectID, dayIndex, exerciseIndex int) (*domain.Plan, error)
	AttachMealImage(ctx context.Context, userID, planID primitive.ObjectID, dayIndex, mealIndex int) (*domain.Plan, error)
}

type planService struct {
	planRepo    repository.PlanRepository
	profileRepo repository.ProfileRepository
	router      AIRouter
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository, profileRepo repository.ProfileRepository, router AIRouter) PlanService {
	return &planService{
		planRepo:    planRepo,
		profileRepo: profileRepo,
		router:      router,
	}
}

// GenerateWorkoutPlan runs the full pipeline: build the prompt from the
// user's profile, ask the router for strict JSON, structurally validate the
// result and retry on malformed output, then persist the normalized plan as
// the user's single active workout plan.
func (s *planService) GenerateWorkoutPlan(ctx context.Context, userID primitive.ObjectID, note string) (*domain.Plan, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	msgs := buildWorkoutPrompt(profile, note)
	opts := ai.Options{ResponseMIMEType: ai.MIMETypeJSON}

	var lastErr error
	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		answer, err := s.router.Ask(ctx, msgs, opts)
		if err != nil {
			// Provider failures are not retried; only malformed output is.
			// The typed cause stays in the chain so callers can detect rate
			// limits through the sentinel.
			return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}

		workoutPlan, err := domain.ValidateWorkoutPlan([]byte(answer.Text))
		if err != nil {
			lastErr = err
			log.Printf("WARN: workout generation attempt %d/%d produced invalid plan: %v", attempt, maxGenerationAttempts, err)
			continue
		}

		canonical, err := json.Marshal(workoutPlan)
		if err != nil {
			return nil, fmt.Errorf("serialize plan: %w", err)
		}

		plan := &domain.Plan{
			UserID:        userID,
			Kind:          domain.PlanKindWorkout,
			PlanText:      string(canonical),
			WorkoutPlan:   workoutPlan,
			Model:         answer.Model,
			PromptVersion: workoutPromptVersion,
		}
		return s.planRepo.SaveActive(ctx, plan)
	}

	return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, lastErr)
}

// GenerateDietPlan shares the workout pipeline's shape but treats the model
// output as an opaque document: no structural validation and no retry loop.
// The structured mirror is decoded opportunistically so meal images can be
// attached when the model happened to produce the expected shape.
func (s *planService) GenerateDietPlan(ctx context.Context, userID primitive.ObjectID, note string) (*domain.Plan, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	msgs := buildDietPrompt(profile, note)
	answer, err := s.router.Ask(ctx, msgs, ai.Options{ResponseMIMEType: ai.MIMETypeJSON})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	plan := &domain.Plan{
		UserID:        userID,
		Kind:          domain.PlanKindDiet,
		PlanText:      answer.Text,
		Model:         answer.Model,
		PromptVersion: dietPromptVersion,
	}

	var dietPlan domain.DietPlan
	if err := json.Unmarshal([]byte(answer.Text), &dietPlan); err == nil && len(dietPlan.Days) > 0 {
		plan.DietPlan = &dietPlan
	}

	return s.planRepo.SaveActive(ctx, plan)
}

// GetActivePlan returns the user's active plan of the given kind.
func (s *planService) GetActivePlan(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) (*domain.Plan, error) {
	plan, err := s.planRepo.GetActive(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// ListPlans returns all plans for a user, newest first.
func (s *planService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	return s.planRepo.GetByUserID(ctx, userID)
}

// AttachExerciseImage asks the AI for a single illustrative image URL for
// one exercise and patches it into the stored plan. Single attempt, no
// retry: a bad response surfaces a typed error.
func (s *planService) AttachExerciseImage(ctx context.Context, userID, planID primitive.ObjectID, dayIndex, exerciseIndex int) (*domain.Plan, error) {
	plan, err := s.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if plan.WorkoutPlan == nil || dayIndex < 0 || dayIndex >= len(plan.WorkoutPlan.Days) {
		return nil, ErrPlanExerciseNotFound
	}
	day := plan.WorkoutPlan.Days[dayIndex]
	if exerciseIndex < 0 || exerciseIndex >= len(day.Exercises) {
		return nil, ErrPlanExerciseNotFound
	}
	exercise := day.Exercises[exerciseIndex]

	imageURL, err := s.requestImageURL(ctx, fmt.Sprintf("the exercise %q (equipment: %s)", exercise.Name, exercise.Equipment))
	if err != nil {
		return nil, err
	}

	plan.WorkoutPlan.Days[dayIndex].Exercises[exerciseIndex].ImageURL = imageURL
	canonical, err := json.Marshal(plan.WorkoutPlan)
	if err != nil {
		return nil, fmt.Errorf("serialize plan: %w", err)
	}
	if err := s.planRepo.SetExerciseImage(ctx, plan.ID, dayIndex, exerciseIndex, imageURL, string(canonical)); err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, plan.ID)
}

// AttachMealImage is the diet counterpart of AttachExerciseImage. Diet plans
// without a structured mirror cannot address meals and report not-found.
func (s *planService) AttachMealImage(ctx context.Context, userID, planID primitive.ObjectID, dayIndex, mealIndex int) (*domain.Plan, error) {
	plan, err := s.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if plan.DietPlan == nil || dayIndex < 0 || dayIndex >= len(plan.DietPlan.Days) {
		return nil, ErrMealNotFound
	}
	day := plan.DietPlan.Days[dayIndex]
	if mealIndex < 0 || mealIndex >= len(day.Meals) {
		return nil, ErrMealNotFound
	}
	meal := day.Meals[mealIndex]

	imageURL, err := s.requestImageURL(ctx, fmt.Sprintf("the meal %q", meal.Name))
	if err != nil {
		return nil, err
	}

	plan.DietPlan.Days[dayIndex].Meals[mealIndex].ImageURL = imageURL
	canonical, err := json.Marshal(plan.DietPlan)
	if err != nil {
		return nil, fmt.Errorf("serialize plan: %w", err)
	}
	if err := s.planRepo.SetMealImage(ctx, plan.ID, dayIndex, mealIndex, imageURL, string(canonical)); err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, plan.ID)
}

func (s *planService) ownedPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	// Ownership mismatches are indistinguishable from missing plans to the
	// caller.
	if plan.UserID != userID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// requestImageURL demands strict {"imageUrl": "https://..."} JSON from the
// router and validates the shape and URL scheme.
func (s *planService) requestImageURL(ctx context.Context, subject string) (string, error) {
	msgs := buildImagePrompt(subject)
	answer, err := s.router.Ask(ctx, msgs, ai.Options{ResponseMIMEType: ai.MIMETypeJSON})
	if err != nil {
		return "", err
	}

	var parsed any
	if err := json.Unmarshal([]byte(answer.Text), &parsed); err != nil {
		return "", ErrImageResponseInvalid
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return "", ErrImageResponseInvalid
	}
	raw, ok := obj["imageUrl"].(string)
	if !ok || raw == "" {
		return "", ErrImageResponseInvalid
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrImageURLInvalid
	}
	return raw, nil
}
