package service

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.WorkoutSession) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	s.ID = id
	clone := *s
	f.sessions[id] = &clone
	return id, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, s *domain.WorkoutSession) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *s
	f.sessions[s.ID] = &clone
	return nil
}

func (f *fakeSessionRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	var out []domain.WorkoutSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func newSessionFixture(t *testing.T) (SessionService, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	userID := primitive.NewObjectID()
	planRepo := newFakePlanRepo()
	plan := &domain.Plan{
		UserID: userID,
		Kind:   domain.PlanKindWorkout,
		WorkoutPlan: &domain.WorkoutPlan{Days: []domain.PlanDay{
			{DayIndex: 0, Exercises: []domain.PlanExercise{
				{Name: "Squat", Sets: 3, Order: 1},
				{Name: "Push-up", Sets: 2, Order: 2},
			}},
		}},
	}
	if _, err := planRepo.SaveActive(context.Background(), plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return NewSessionService(newFakeSessionRepo(), planRepo), userID, plan.ID
}

func TestStartSessionPrefillsExerciseLog(t *testing.T) {
	svc, userID, planID := newSessionFixture(t)

	session, err := svc.Start(context.Background(), userID, planID, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.ID == primitive.NilObjectID {
		t.Error("session ID not assigned")
	}
	if session.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
	if session.EndedAt != nil {
		t.Error("new session already ended")
	}
	if len(session.Exercises) != 2 {
		t.Fatalf("got %d exercise logs, want 2", len(session.Exercises))
	}
	if len(session.Exercises[0].Sets) != 3 {
		t.Errorf("squat has %d set slots, want 3", len(session.Exercises[0].Sets))
	}
}

func TestStartSessionRejectsForeignPlan(t *testing.T) {
	svc, _, planID := newSessionFixture(t)

	_, err := svc.Start(context.Background(), primitive.NewObjectID(), planID, 0)
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("error = %v, want ErrPlanNotFound", err)
	}
}

func TestUpdateSessionFinalizes(t *testing.T) {
	svc, userID, planID := newSessionFixture(t)
	session, err := svc.Start(context.Background(), userID, planID, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	intensity := 7
	energy := 4
	notes := "felt strong"
	status := domain.SessionCompleted
	updated, err := svc.Update(context.Background(), userID, session.ID, SessionUpdate{
		Status:             &status,
		PerceivedIntensity: &intensity,
		EnergyLevel:        &energy,
		Notes:              &notes,
		Ended:              true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.EndedAt == nil {
		t.Error("EndedAt not set")
	}
	if updated.Status != domain.SessionCompleted {
		t.Errorf("status = %q", updated.Status)
	}
	if updated.PerceivedIntensity != 7 || updated.EnergyLevel != 4 {
		t.Errorf("ratings = %d/%d", updated.PerceivedIntensity, updated.EnergyLevel)
	}
	if updated.Notes != "felt strong" {
		t.Errorf("notes = %q", updated.Notes)
	}
}

func TestUpdateSessionValidatesRanges(t *testing.T) {
	svc, userID, planID := newSessionFixture(t)
	session, err := svc.Start(context.Background(), userID, planID, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	bad := 11
	if _, err := svc.Update(context.Background(), userID, session.ID, SessionUpdate{PerceivedIntensity: &bad}); err == nil {
		t.Error("intensity 11 accepted")
	}
	badEnergy := 0
	if _, err := svc.Update(context.Background(), userID, session.ID, SessionUpdate{EnergyLevel: &badEnergy}); err == nil {
		t.Error("energy 0 accepted")
	}
	badStatus := domain.SessionStatus("finished")
	if _, err := svc.Update(context.Background(), userID, session.ID, SessionUpdate{Status: &badStatus}); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestUpdateSessionOwnership(t *testing.T) {
	svc, userID, planID := newSessionFixture(t)
	session, err := svc.Start(context.Background(), userID, planID, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = svc.Update(context.Background(), primitive.NewObjectID(), session.ID, SessionUpdate{})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}
