package api

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubPlanService returns fixed results per method.
type stubPlanService struct {
	plan *domain.Plan
	err  error
}

func (s *stubPlanService) GenerateWorkoutPlan(ctx context.Context, userID primitive.ObjectID, note string) (*domain.Plan, error) {
	return s.plan, s.err
}

func (s *stubPlanService) GenerateDietPlan(ctx context.Context, userID primitive.ObjectID, note string) (*domain.Plan, error) {
	return s.plan, s.err
}

func (s *stubPlanService) GetActivePlan(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) (*domain.Plan, error) {
	return s.plan, s.err
}

func (s *stubPlanService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	return nil, s.err
}

func (s *stubPlanService) AttachExerciseImage(ctx context.Context, userID, planID primitive.ObjectID, dayIndex, exerciseIndex int) (*domain.Plan, error) {
	return s.plan, s.err
}

func (s *stubPlanService) AttachMealImage(ctx context.Context, userID, planID primitive.ObjectID, dayIndex, mealIndex int) (*domain.Plan, error) {
	return s.plan, s.err
}

func planTestEngine(svc service.PlanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewPlanHandler(svc)

	group := r.Group("/api/plans")
	group.Use(AuthMiddleware(testSecret))
	group.POST("/generate-workout", handler.GenerateWorkout)
	group.GET("/active", handler.GetActive)
	group.POST("/workout-image", handler.WorkoutImage)
	group.POST("/diet-image", handler.DietImage)
	return r
}

func authedRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+signToken(t, domain.RoleUser, time.Hour))
	return req
}

func TestGenerateWorkoutErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no profile", service.ErrProfileNotFound, http.StatusNotFound, "profile_not_found"},
		{"generation failed", service.ErrGenerationFailed, http.StatusInternalServerError, "generation_failed"},
		// A rate-limited provider is detected through the wrapped chain and
		// wins over the generic generation failure.
		{"rate limited", fmt.Errorf("%w: %w", service.ErrGenerationFailed,
			&ai.APIError{Provider: "Groq", StatusCode: http.StatusTooManyRequests, RetryAfter: "21s"}),
			http.StatusTooManyRequests, "rate_limited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := planTestEngine(&stubPlanService{err: tt.err})
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/plans/generate-workout", `{}`))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeErrorBody(t, rec); body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestImageEndpointErrorMapping(t *testing.T) {
	reqBody := `{"planId":"64b5f0c2a1b2c3d4e5f60718","dayIndex":0,"exerciseIndex":0,"mealIndex":0}`
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"plan missing", "/api/plans/workout-image", service.ErrPlanNotFound, http.StatusNotFound, "plan_not_found"},
		{"exercise missing", "/api/plans/workout-image", service.ErrPlanExerciseNotFound, http.StatusNotFound, "exercise_not_found"},
		{"meal missing", "/api/plans/diet-image", service.ErrMealNotFound, http.StatusNotFound, "meal_not_found"},
		{"bad ai response", "/api/plans/workout-image", service.ErrImageResponseInvalid, http.StatusBadGateway, "image_response_invalid"},
		{"bad url", "/api/plans/workout-image", service.ErrImageURLInvalid, http.StatusBadRequest, "image_url_invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := planTestEngine(&stubPlanService{err: tt.err})
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, authedRequest(t, http.MethodPost, tt.path, reqBody))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeErrorBody(t, rec); body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestImageEndpointRejectsBadPlanID(t *testing.T) {
	r := planTestEngine(&stubPlanService{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/plans/workout-image", `{"planId":"nope","dayIndex":0,"exerciseIndex":0}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Error.Code != "validation_error" {
		t.Errorf("code = %q", body.Error.Code)
	}
}

func TestGetActiveRejectsUnknownKind(t *testing.T) {
	r := planTestEngine(&stubPlanService{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/plans/active?kind=yoga", ""))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetActiveRequiresAuth(t *testing.T) {
	r := planTestEngine(&stubPlanService{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/active", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Error.Code != "unauthorized" {
		t.Errorf("code = %q", body.Error.Code)
	}
}
