package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus describes how a workout session ended (or that it is still
// in progress when EndedAt is unset).
type SessionStatus string

const (
	SessionCompleted SessionStatus = "completed"
	SessionPartial   SessionStatus = "partial"
	SessionAborted   SessionStatus = "aborted"
)

// WorkoutSession is a set-by-set log of one plan day. It is created when the
// user starts the day, autosaved incrementally while in progress, and
// finalized when EndedAt is set.
type WorkoutSession struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID             primitive.ObjectID `bson:"planId" json:"planId"`
	PlanDayIndex       int                `bson:"planDayIndex" json:"planDayIndex"`
	StartedAt          time.Time          `bson:"startedAt" json:"startedAt"`
	EndedAt            *time.Time         `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	Status             SessionStatus      `bson:"status,omitempty" json:"status,omitempty"`
	PerceivedIntensity int                `bson:"perceivedIntensity,omitempty" json:"perceivedIntensity,omitempty"` // 1..10
	EnergyLevel        int                `bson:"energyLevel,omitempty" json:"energyLevel,omitempty"`               // 1..5
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Exercises          []ExerciseLog      `bson:"exercises" json:"exercises"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseLog records the performed sets for one exercise of the day.
type ExerciseLog struct {
	Name    string   `bson:"name" json:"name"`
	Order   int      `bson:"order" json:"order"`
	Skipped bool     `bson:"skipped,omitempty" json:"skipped,omitempty"`
	Sets    []SetLog `bson:"sets" json:"sets"`
}

// SetLog is one performed set.
type SetLog struct {
	Reps     int     `bson:"reps" json:"reps"`
	WeightKg float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	Done     bool    `bson:"done" json:"done"`
}
