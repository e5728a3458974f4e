package service

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound = errors.New("workout session not found")
)

// SessionUpdate carries the autosave/finalize mutations for a session.
// Nil fields are left unchanged.
type SessionUpdate struct {
	Exercises          []domain.ExerciseLog
	Status             *domain.SessionStatus
	PerceivedIntensity *int
	EnergyLevel        *int
	Notes              *string
	Ended              bool // Set EndedAt to now, finalizing the session
}

// SessionService manages workout session logs.
type SessionService interface {
	Start(ctx context.Context, userID, planID primitive.ObjectID, planDayIndex int) (*domain.WorkoutSession, error)
	Update(ctx context.Context, userID, sessionID primitive.ObjectID, update SessionUpdate) (*domain.WorkoutSession, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error)
}

type sessionService struct {
	sessionRepo repository.WorkoutSessionRepository
	planRepo    repository.PlanRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(sessionRepo repository.WorkoutSessionRepository, planRepo repository.PlanRepository) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		planRepo:    planRepo,
	}
}

// Start creates an in-progress session for one plan day, pre-populating the
// exercise log skeleton from the plan when available.
func (s *sessionService) Start(ctx context.Context, userID, planID primitive.ObjectID, planDayIndex int) (*domain.WorkoutSession, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrPlanNotFound
	}

	session := &domain.WorkoutSession{
		UserID:       userID,
		PlanID:       planID,
		PlanDayIndex: planDayIndex,
		StartedAt:    time.Now().UTC(),
	}

	if plan.WorkoutPlan != nil && planDayIndex >= 0 && planDayIndex < len(plan.WorkoutPlan.Days) {
		for _, ex := range plan.WorkoutPlan.Days[planDayIndex].Exercises {
			session.Exercises = append(session.Exercises, domain.ExerciseLog{
				Name:  ex.Name,
				Order: ex.Order,
				Sets:  make([]domain.SetLog, ex.Sets),
			})
		}
	}

	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = sessionID
	return session, nil
}

// Update applies an autosave or finalization to an owned session.
func (s *sessionService) Update(ctx context.Context, userID, sessionID primitive.ObjectID, update SessionUpdate) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	if update.Exercises != nil {
		session.Exercises = update.Exercises
	}
	if update.Status != nil {
		switch *update.Status {
		case domain.SessionCompleted, domain.SessionPartial, domain.SessionAborted:
			session.Status = *update.Status
		default:
			return nil, fmt.Errorf("invalid session status %q", *update.Status)
		}
	}
	if update.PerceivedIntensity != nil {
		if *update.PerceivedIntensity < 1 || *update.PerceivedIntensity > 10 {
			return nil, errors.New("perceivedIntensity must be between 1 and 10")
		}
		session.PerceivedIntensity = *update.PerceivedIntensity
	}
	if update.EnergyLevel != nil {
		if *update.EnergyLevel < 1 || *update.EnergyLevel > 5 {
			return nil, errors.New("energyLevel must be between 1 and 5")
		}
		session.EnergyLevel = *update.EnergyLevel
	}
	if update.Notes != nil {
		session.Notes = *update.Notes
	}
	if update.Ended && session.EndedAt == nil {
		now := time.Now().UTC()
		session.EndedAt = &now
		if session.Status == "" {
			session.Status = domain.SessionCompleted
		}
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// List returns the user's sessions, newest first.
func (s *sessionService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	return s.sessionRepo.GetByUserID(ctx, userID)
}
