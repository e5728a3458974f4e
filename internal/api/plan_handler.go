package api

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler exposes plan generation, retrieval and image enrichment.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type GeneratePlanRequest struct {
	Note string `json:"note"` // Optional free-form wish folded into the prompt
}

type WorkoutImageRequest struct {
	PlanID        string `json:"planId" binding:"required"`
	DayIndex      int    `json:"dayIndex" binding:"min=0"`
	ExerciseIndex int    `json:"exerciseIndex" binding:"min=0"`
}

type DietImageRequest struct {
	PlanID    string `json:"planId" binding:"required"`
	DayIndex  int    `json:"dayIndex" binding:"min=0"`
	MealIndex int    `json:"mealIndex" binding:"min=0"`
}

// --- Handler Methods ---

// GenerateWorkout generates and activates a new workout plan.
func (h *PlanHandler) GenerateWorkout(c *gin.Context) {
	h.generate(c, h.planService.GenerateWorkoutPlan)
}

// GenerateDiet generates and activates a new diet plan.
func (h *PlanHandler) GenerateDiet(c *gin.Context) {
	h.generate(c, h.planService.GenerateDietPlan)
}

func (h *PlanHandler) generate(c *gin.Context, gen func(ctx context.Context, userID primitive.ObjectID, note string) (*domain.Plan, error)) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An empty body means no extra note.
		req = GeneratePlanRequest{}
	}

	plan, err := gen(c.Request.Context(), userID, req.Note)
	if err != nil {
		h.abortGenerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) abortGenerationError(c *gin.Context, err error) {
	var apiErr *ai.APIError
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		abortWithError(c, http.StatusNotFound, "profile_not_found", "create a profile before generating a plan")
	case errors.Is(err, ai.ErrNoModelsAvailable):
		abortWithError(c, http.StatusServiceUnavailable, "no_models_available", "no AI models are configured")
	case errors.As(err, &apiErr) && apiErr.IsRateLimit():
		abortWithError(c, http.StatusTooManyRequests, "rate_limited", apiErr.UserMessage())
	case errors.Is(err, service.ErrGenerationFailed):
		// Per-attempt detail is logged server-side; the client gets a
		// generic failure.
		abortWithError(c, http.StatusInternalServerError, "generation_failed", "could not generate a plan, please try again")
	default:
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not generate plan")
	}
}

// GetActive returns the caller's active plan of ?kind=workout|diet.
func (h *PlanHandler) GetActive(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	kind := domain.PlanKind(c.DefaultQuery("kind", string(domain.PlanKindWorkout)))
	if kind != domain.PlanKindWorkout && kind != domain.PlanKindDiet {
		abortWithError(c, http.StatusBadRequest, "validation_error", "kind must be \"workout\" or \"diet\"")
		return
	}

	plan, err := h.planService.GetActivePlan(c.Request.Context(), userID, kind)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "plan_not_found", "no active plan")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not load plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// List returns every plan of the caller, newest first.
func (h *PlanHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not list plans")
		return
	}
	if plans == nil {
		plans = []domain.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

// WorkoutImage attaches an AI-sourced image URL to one exercise.
func (h *PlanHandler) WorkoutImage(c *gin.Context) {
	var req WorkoutImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid image request", bindingFields(err))
		return
	}
	h.attachImage(c, req.PlanID, req.DayIndex, req.ExerciseIndex, h.planService.AttachExerciseImage, "exercise_not_found", "exercise not found in plan")
}

// DietImage attaches an AI-sourced image URL to one meal.
func (h *PlanHandler) DietImage(c *gin.Context) {
	var req DietImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid image request", bindingFields(err))
		return
	}
	h.attachImage(c, req.PlanID, req.DayIndex, req.MealIndex, h.planService.AttachMealImage, "meal_not_found", "meal not found in plan")
}

func (h *PlanHandler) attachImage(c *gin.Context, planIDHex string, dayIndex, itemIndex int, attach func(ctx context.Context, userID, planID primitive.ObjectID, dayIndex, itemIndex int) (*domain.Plan, error), notFoundCode, notFoundMsg string) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	planID, err := primitive.ObjectIDFromHex(planIDHex)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "planId is not a valid ID")
		return
	}

	plan, err := attach(c.Request.Context(), userID, planID, dayIndex, itemIndex)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, "plan_not_found", "plan not found")
		case errors.Is(err, service.ErrPlanExerciseNotFound), errors.Is(err, service.ErrMealNotFound):
			abortWithError(c, http.StatusNotFound, notFoundCode, notFoundMsg)
		case errors.Is(err, service.ErrImageResponseInvalid):
			abortWithError(c, http.StatusBadGateway, "image_response_invalid", "the AI did not return a usable image response")
		case errors.Is(err, service.ErrImageURLInvalid):
			abortWithError(c, http.StatusBadRequest, "image_url_invalid", "the AI returned an invalid image URL")
		default:
			h.abortGenerationError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}
