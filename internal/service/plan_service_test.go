package service

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// scriptedRouter returns canned answers in order, recording every call.
type scriptedRouter struct {
	answers []routerTurn
	calls   [][]ai.Message
}

type routerTurn struct {
	text string
	err  error
}

func (r *scriptedRouter) Ask(ctx context.Context, msgs []ai.Message, opts ai.Options) (*ai.Answer, error) {
	r.calls = append(r.calls, msgs)
	if len(r.answers) == 0 {
		return nil, errors.New("scriptedRouter: no answers left")
	}
	turn := r.answers[0]
	r.answers = r.answers[1:]
	if turn.err != nil {
		return nil, turn.err
	}
	return &ai.Answer{Text: turn.text, Model: "test-model", Type: domain.ModelTypeGroq}, nil
}

// fakeProfileRepo serves a single profile.
type fakeProfileRepo struct {
	profile *domain.Profile
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	f.profile = p
	return p, nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	if f.profile == nil || f.profile.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return f.profile, nil
}

// fakePlanRepo keeps plans in memory and mimics the single-active invariant.
type fakePlanRepo struct {
	plans       map[primitive.ObjectID]*domain.Plan
	saveCalls   int
	imagePatch  string // Last image URL patched
	patchedPath string // "exercise" or "meal"
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (f *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePlanRepo) GetActive(ctx context.Context, userID primitive.ObjectID, kind domain.PlanKind) (*domain.Plan, error) {
	for _, p := range f.plans {
		if p.UserID == userID && p.Kind == kind && p.IsActive {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range f.plans {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) SaveActive(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	f.saveCalls++
	for _, p := range f.plans {
		if p.UserID == plan.UserID && p.Kind == plan.Kind {
			p.IsActive = false
		}
	}
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	plan.IsActive = true
	clone := *plan
	f.plans[plan.ID] = &clone
	return plan, nil
}

func (f *fakePlanRepo) SetExerciseImage(ctx context.Context, planID primitive.ObjectID, dayIndex, exerciseIndex int, imageURL, planText string) error {
	p, ok := f.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.WorkoutPlan.Days[dayIndex].Exercises[exerciseIndex].ImageURL = imageURL
	p.PlanText = planText
	f.imagePatch = imageURL
	f.patchedPath = "exercise"
	return nil
}

func (f *fakePlanRepo) SetMealImage(ctx context.Context, planID primitive.ObjectID, dayIndex, mealIndex int, imageURL, planText string) error {
	p, ok := f.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.DietPlan.Days[dayIndex].Meals[mealIndex].ImageURL = imageURL
	p.PlanText = planText
	f.imagePatch = imageURL
	f.patchedPath = "meal"
	return nil
}

const validGeneratedPlan = `{
	"location": "home",
	"days": [
		{"dayIndex": 0, "label": "Day 1", "exercises": [
			{"name": "Squat", "sets": 3, "reps": "8-12", "restSeconds": 90, "order": 1}
		]},
		{"dayIndex": 1, "isRestDay": true}
	]
}`

func newTestPlanService(router AIRouter) (PlanService, *fakePlanRepo, primitive.ObjectID) {
	userID := primitive.NewObjectID()
	planRepo := newFakePlanRepo()
	profileRepo := &fakeProfileRepo{profile: &domain.Profile{
		UserID: userID,
		Goal:   "build muscle",
	}}
	return NewPlanService(planRepo, profileRepo, router), planRepo, userID
}

func TestGenerateWorkoutPlanRequiresProfile(t *testing.T) {
	svc := NewPlanService(newFakePlanRepo(), &fakeProfileRepo{}, &scriptedRouter{})

	_, err := svc.GenerateWorkoutPlan(context.Background(), primitive.NewObjectID(), "")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("error = %v, want ErrProfileNotFound", err)
	}
}

func TestGenerateWorkoutPlanSuccess(t *testing.T) {
	router := &scriptedRouter{answers: []routerTurn{{text: validGeneratedPlan}}}
	svc, planRepo, userID := newTestPlanService(router)

	plan, err := svc.GenerateWorkoutPlan(context.Background(), userID, "short sessions please")
	if err != nil {
		t.Fatalf("GenerateWorkoutPlan: %v", err)
	}

	if plan.Kind != domain.PlanKindWorkout {
		t.Errorf("kind = %q", plan.Kind)
	}
	if plan.Model != "test-model" {
		t.Errorf("model = %q", plan.Model)
	}
	if plan.WorkoutPlan == nil || len(plan.WorkoutPlan.Days) != 2 {
		t.Fatalf("structured plan missing: %+v", plan.WorkoutPlan)
	}
	// PlanText is the canonical re-serialization, not the raw model output.
	if !strings.Contains(plan.PlanText, `"name":"Squat"`) {
		t.Errorf("planText = %q", plan.PlanText)
	}
	if planRepo.saveCalls != 1 {
		t.Errorf("saveCalls = %d", planRepo.saveCalls)
	}
	if !plan.IsActive {
		t.Error("generated plan not active")
	}
	// The user note must reach the prompt.
	if len(router.calls) != 1 || !strings.Contains(router.calls[0][1].Content, "short sessions please") {
		t.Error("note missing from prompt")
	}
}

func TestGenerateWorkoutPlanRetriesOnInvalidOutput(t *testing.T) {
	router := &scriptedRouter{answers: []routerTurn{
		{text: `not json at all`},
		{text: `{"days":[{"dayIndex":0,"exercises":[{"name":"a","sets":"x","reps":"8","restSeconds":60,"order":1}]}]}`},
		{text: validGeneratedPlan},
	}}
	svc, planRepo, userID := newTestPlanService(router)

	plan, err := svc.GenerateWorkoutPlan(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("GenerateWorkoutPlan: %v", err)
	}
	if len(router.calls) != 3 {
		t.Errorf("router called %d times, want 3", len(router.calls))
	}
	if planRepo.saveCalls != 1 {
		t.Errorf("saveCalls = %d, want 1", planRepo.saveCalls)
	}
	if plan.WorkoutPlan == nil {
		t.Error("plan missing structured form")
	}
}

func TestGenerateWorkoutPlanFailsAfterThreeAttempts(t *testing.T) {
	router := &scriptedRouter{answers: []routerTurn{
		{text: `garbage 1`},
		{text: `garbage 2`},
		{text: `{"days":[{"dayIndex":0,"exercises":[{"name":"a","sets":"three","reps":"8","restSeconds":60,"order":1}]}]}`},
	}}
	svc, planRepo, userID := newTestPlanService(router)

	_, err := svc.GenerateWorkoutPlan(context.Background(), userID, "")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	// The failure surfaces the LAST attempt's validation error.
	if !strings.Contains(err.Error(), "days[0].exercises[0].sets must be a number") {
		t.Errorf("error missing last validation detail: %v", err)
	}
	if len(router.calls) != 3 {
		t.Errorf("router called %d times, want exactly 3", len(router.calls))
	}
	if planRepo.saveCalls != 0 {
		t.Errorf("plan saved despite failure")
	}
}

func TestGenerateWorkoutPlanSurfacesRateLimit(t *testing.T) {
	rateLimited := &ai.APIError{Provider: "Groq", StatusCode: 429, Message: "rate limited", RetryAfter: "21s"}
	router := &scriptedRouter{answers: []routerTurn{{err: rateLimited}}}
	svc, planRepo, userID := newTestPlanService(router)

	_, err := svc.GenerateWorkoutPlan(context.Background(), userID, "")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	// The provider error must stay in the chain so handlers can map 429s.
	var apiErr *ai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError lost from chain: %v", err)
	}
	if !apiErr.IsRateLimit() || apiErr.RetryAfter != "21s" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	// Provider failures are not retried; only malformed output is.
	if len(router.calls) != 1 {
		t.Errorf("router called %d times, want 1", len(router.calls))
	}
	if planRepo.saveCalls != 0 {
		t.Error("plan saved despite failure")
	}
}

func TestGenerateDietPlanSurfacesRateLimit(t *testing.T) {
	rateLimited := &ai.APIError{Provider: "Mistral", StatusCode: 429, Message: "rate limited"}
	router := &scriptedRouter{answers: []routerTurn{{err: rateLimited}}}
	svc, _, userID := newTestPlanService(router)

	_, err := svc.GenerateDietPlan(context.Background(), userID, "")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
	var apiErr *ai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError lost from chain: %v", err)
	}
	if !apiErr.IsRateLimit() {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestGenerateDietPlanSingleAttemptNoValidation(t *testing.T) {
	// Diet output is opaque: even non-JSON is stored verbatim, one attempt.
	router := &scriptedRouter{answers: []routerTurn{{text: "Monday: oatmeal.\nTuesday: eggs."}}}
	svc, planRepo, userID := newTestPlanService(router)

	plan, err := svc.GenerateDietPlan(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("GenerateDietPlan: %v", err)
	}
	if len(router.calls) != 1 {
		t.Errorf("router called %d times, want 1", len(router.calls))
	}
	if plan.Kind != domain.PlanKindDiet {
		t.Errorf("kind = %q", plan.Kind)
	}
	if plan.PlanText != "Monday: oatmeal.\nTuesday: eggs." {
		t.Errorf("planText altered: %q", plan.PlanText)
	}
	if plan.DietPlan != nil {
		t.Error("non-JSON output produced a structured mirror")
	}
	if planRepo.saveCalls != 1 {
		t.Errorf("saveCalls = %d", planRepo.saveCalls)
	}
}

func TestGenerateDietPlanDecodesStructuredMirror(t *testing.T) {
	router := &scriptedRouter{answers: []routerTurn{{text: `{"days":[{"dayIndex":0,"meals":[{"name":"Breakfast"}]}]}`}}}
	svc, _, userID := newTestPlanService(router)

	plan, err := svc.GenerateDietPlan(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("GenerateDietPlan: %v", err)
	}
	if plan.DietPlan == nil || len(plan.DietPlan.Days) != 1 {
		t.Fatalf("structured mirror missing: %+v", plan.DietPlan)
	}
}

func TestGenerateNewPlanDeactivatesPrevious(t *testing.T) {
	router := &scriptedRouter{answers: []routerTurn{
		{text: validGeneratedPlan},
		{text: validGeneratedPlan},
	}}
	svc, planRepo, userID := newTestPlanService(router)

	first, err := svc.GenerateWorkoutPlan(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("first generation: %v", err)
	}
	if _, err := svc.GenerateWorkoutPlan(context.Background(), userID, ""); err != nil {
		t.Fatalf("second generation: %v", err)
	}

	active := 0
	for _, p := range planRepo.plans {
		if p.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("%d active plans, want 1", active)
	}
	_ = first
}

func setupPlanWithImageTarget(t *testing.T, router AIRouter) (PlanService, *fakePlanRepo, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	gen := &scriptedRouter{answers: []routerTurn{{text: validGeneratedPlan}}}
	svc, planRepo, userID := newTestPlanService(gen)
	plan, err := svc.GenerateWorkoutPlan(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("setup generation: %v", err)
	}

	profileRepo := &fakeProfileRepo{profile: &domain.Profile{UserID: userID}}
	return NewPlanService(planRepo, profileRepo, router), planRepo, userID, plan.ID
}

func TestAttachExerciseImageSuccess(t *testing.T) {
	router := &scriptedRouter{answers: []routerTurn{{text: `{"imageUrl":"https://img.example.com/squat.jpg"}`}}}
	svc, planRepo, userID, planID := setupPlanWithImageTarget(t, router)

	plan, err := svc.AttachExerciseImage(context.Background(), userID, planID, 0, 0)
	if err != nil {
		t.Fatalf("AttachExerciseImage: %v", err)
	}
	if got := plan.WorkoutPlan.Days[0].Exercises[0].ImageURL; got != "https://img.example.com/squat.jpg" {
		t.Errorf("imageUrl = %q", got)
	}
	if planRepo.patchedPath != "exercise" {
		t.Errorf("patched %q", planRepo.patchedPath)
	}
	// The serialized mirror is refreshed together with the image.
	if !strings.Contains(plan.PlanText, "squat.jpg") {
		t.Error("planText not refreshed with image URL")
	}
}

func TestAttachExerciseImageWrongOwner(t *testing.T) {
	router := &scriptedRouter{answers: []routerTurn{{text: `{"imageUrl":"https://x.example/y.jpg"}`}}}
	svc, _, _, planID := setupPlanWithImageTarget(t, router)

	_, err := svc.AttachExerciseImage(context.Background(), primitive.NewObjectID(), planID, 0, 0)
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("error = %v, want ErrPlanNotFound", err)
	}
}

func TestAttachExerciseImageIndexOutOfRange(t *testing.T) {
	router := &scriptedRouter{}
	svc, _, userID, planID := setupPlanWithImageTarget(t, router)

	// Day 1 is a rest day with no exercises.
	if _, err := svc.AttachExerciseImage(context.Background(), userID, planID, 1, 0); !errors.Is(err, ErrPlanExerciseNotFound) {
		t.Errorf("rest day: error = %v, want ErrPlanExerciseNotFound", err)
	}
	if _, err := svc.AttachExerciseImage(context.Background(), userID, planID, 0, 5); !errors.Is(err, ErrPlanExerciseNotFound) {
		t.Errorf("bad index: error = %v, want ErrPlanExerciseNotFound", err)
	}
	if len(router.calls) != 0 {
		t.Error("router called for out-of-range target")
	}
}

func TestAttachExerciseImageInvalidResponse(t *testing.T) {
	for _, text := range []string{
		`not json`,
		`["https://x.example/y.jpg"]`,
		`{"url":"https://x.example/y.jpg"}`,
		`{"imageUrl":""}`,
		`{"imageUrl":42}`,
	} {
		router := &scriptedRouter{answers: []routerTurn{{text: text}}}
		svc, _, userID, planID := setupPlanWithImageTarget(t, router)

		_, err := svc.AttachExerciseImage(context.Background(), userID, planID, 0, 0)
		if !errors.Is(err, ErrImageResponseInvalid) {
			t.Errorf("response %s: error = %v, want ErrImageResponseInvalid", text, err)
		}
	}
}

func TestAttachExerciseImageInvalidURL(t *testing.T) {
	for _, url := range []string{
		"ftp://files.example.com/squat.jpg",
		"javascript:alert(1)",
		"/relative/path.jpg",
		"https://",
	} {
		router := &scriptedRouter{answers: []routerTurn{{text: `{"imageUrl":"` + url + `"}`}}}
		svc, _, userID, planID := setupPlanWithImageTarget(t, router)

		_, err := svc.AttachExerciseImage(context.Background(), userID, planID, 0, 0)
		if !errors.Is(err, ErrImageURLInvalid) {
			t.Errorf("url %s: error = %v, want ErrImageURLInvalid", url, err)
		}
	}
}

func TestAttachMealImageWithoutStructuredDiet(t *testing.T) {
	// Opaque diet plans cannot address meals.
	gen := &scriptedRouter{answers: []routerTurn{{text: "just prose"}}}
	svc, planRepo, userID := newTestPlanService(gen)
	plan, err := svc.GenerateDietPlan(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	profileRepo := &fakeProfileRepo{profile: &domain.Profile{UserID: userID}}
	svc2 := NewPlanService(planRepo, profileRepo, &scriptedRouter{})

	_, err = svc2.AttachMealImage(context.Background(), userID, plan.ID, 0, 0)
	if !errors.Is(err, ErrMealNotFound) {
		t.Errorf("error = %v, want ErrMealNotFound", err)
	}
}

func TestAttachMealImageSuccess(t *testing.T) {
	gen := &scriptedRouter{answers: []routerTurn{{text: `{"days":[{"dayIndex":0,"meals":[{"name":"Breakfast"}]}]}`}}}
	svc, planRepo, userID := newTestPlanService(gen)
	dietPlan, err := svc.GenerateDietPlan(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	profileRepo := &fakeProfileRepo{profile: &domain.Profile{UserID: userID}}
	imgRouter := &scriptedRouter{answers: []routerTurn{{text: `{"imageUrl":"https://img.example.com/oatmeal.jpg"}`}}}
	svc2 := NewPlanService(planRepo, profileRepo, imgRouter)

	plan, err := svc2.AttachMealImage(context.Background(), userID, dietPlan.ID, 0, 0)
	if err != nil {
		t.Fatalf("AttachMealImage: %v", err)
	}
	if got := plan.DietPlan.Days[0].Meals[0].ImageURL; got != "https://img.example.com/oatmeal.jpg" {
		t.Errorf("imageUrl = %q", got)
	}
	if planRepo.patchedPath != "meal" {
		t.Errorf("patched %q", planRepo.patchedPath)
	}
}
