package api

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler exposes the workout session log endpoints.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- Request Structs ---

type StartSessionRequest struct {
	PlanID       string `json:"planId" binding:"required"`
	PlanDayIndex int    `json:"planDayIndex" binding:"min=0"`
}

type UpdateSessionRequest struct {
	Exercises          []domain.ExerciseLog  `json:"exercises"`
	Status             *domain.SessionStatus `json:"status" binding:"omitempty,oneof=completed partial aborted"`
	PerceivedIntensity *int                  `json:"perceivedIntensity" binding:"omitempty,min=1,max=10"`
	EnergyLevel        *int                  `json:"energyLevel" binding:"omitempty,min=1,max=5"`
	Notes              *string               `json:"notes"`
	End                bool                  `json:"end"` // Finalize the session
}

// --- Handler Methods ---

// Start opens a session for one plan day.
func (h *SessionHandler) Start(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid session payload", bindingFields(err))
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "planId is not a valid ID")
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), userID, planID, req.PlanDayIndex)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "plan_not_found", "plan not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not start session")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Update autosaves or finalizes a session.
func (h *SessionHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "session ID is not valid")
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid session payload", bindingFields(err))
		return
	}

	session, err := h.sessionService.Update(c.Request.Context(), userID, sessionID, service.SessionUpdate{
		Exercises:          req.Exercises,
		Status:             req.Status,
		PerceivedIntensity: req.PerceivedIntensity,
		EnergyLevel:        req.EnergyLevel,
		Notes:              req.Notes,
		Ended:              req.End,
	})
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, "session_not_found", "workout session not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not update session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// List returns the caller's sessions, newest first.
func (h *SessionHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not list sessions")
		return
	}
	if sessions == nil {
		sessions = []domain.WorkoutSession{}
	}
	c.JSON(http.StatusOK, sessions)
}
