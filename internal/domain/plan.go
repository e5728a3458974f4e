package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanKind separates workout plans from diet plans. The single-active-plan
// invariant holds per (user, kind).
type PlanKind string

const (
	PlanKindWorkout PlanKind = "workout"
	PlanKindDiet    PlanKind = "diet"
)

// Plan is the persisted envelope around a generated plan. At most one plan
// per user and kind has IsActive=true; the repository enforces this by
// deactivating every other plan when a new one is saved.
type Plan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Kind          PlanKind           `bson:"kind" json:"kind"`
	Title         string             `bson:"title,omitempty" json:"title,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	PlanText      string             `bson:"planText" json:"planText"` // Canonical serialized form (JSON for workout, prose for diet)
	WorkoutPlan   *WorkoutPlan       `bson:"workoutPlan,omitempty" json:"workoutPlan,omitempty"`
	DietPlan      *DietPlan          `bson:"dietPlan,omitempty" json:"dietPlan,omitempty"`
	Model         string             `bson:"model,omitempty" json:"model,omitempty"` // Which model produced it
	PromptVersion string             `bson:"promptVersion,omitempty" json:"promptVersion,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutPlan is the structured plan the generator validates against. It is
// the authoritative shape the LLM must emit.
type WorkoutPlan struct {
	Location           string    `bson:"location,omitempty" json:"location,omitempty"`
	AvailableEquipment []string  `bson:"availableEquipment,omitempty" json:"availableEquipment,omitempty"`
	GeneralNotes       string    `bson:"generalNotes,omitempty" json:"generalNotes,omitempty"`
	Days               []PlanDay `bson:"days" json:"days"`
}

// PlanDay is one day in a workout plan. Rest days may carry no exercises.
type PlanDay struct {
	DayIndex  int            `bson:"dayIndex" json:"dayIndex"`
	Label     string         `bson:"label,omitempty" json:"label,omitempty"` // e.g. "Monday", "Day 1"
	Focus     string         `bson:"focus,omitempty" json:"focus,omitempty"` // e.g. "Push", "Legs"
	IsRestDay bool           `bson:"isRestDay" json:"isRestDay"`
	Notes     string         `bson:"notes,omitempty" json:"notes,omitempty"`
	Exercises []PlanExercise `bson:"exercises" json:"exercises"`
}

// PlanExercise is a single prescribed exercise within a day.
type PlanExercise struct {
	Name        string `bson:"name" json:"name"`
	Equipment   string `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Sets        int    `bson:"sets" json:"sets"`
	Reps        string `bson:"reps" json:"reps"` // Free-form: "8-12", "AMRAP", "30s"
	RestSeconds int    `bson:"restSeconds" json:"restSeconds"`
	Order       int    `bson:"order" json:"order"`
	Tempo       string `bson:"tempo,omitempty" json:"tempo,omitempty"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`
	ImageURL    string `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// DietPlan mirrors the structured part of a generated diet, when the model
// happens to produce one. Diet output is treated as an opaque document and
// never schema-validated; this structure exists only so the image enrichment
// path can address meals by index.
type DietPlan struct {
	GeneralNotes string    `bson:"generalNotes,omitempty" json:"generalNotes,omitempty"`
	Days         []DietDay `bson:"days,omitempty" json:"days,omitempty"`
}

type DietDay struct {
	DayIndex int    `bson:"dayIndex" json:"dayIndex"`
	Label    string `bson:"label,omitempty" json:"label,omitempty"`
	Meals    []Meal `bson:"meals,omitempty" json:"meals,omitempty"`
}

type Meal struct {
	Name        string   `bson:"name" json:"name"` // e.g. "Breakfast"
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Calories    int      `bson:"calories,omitempty" json:"calories,omitempty"`
	Ingredients []string `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	ImageURL    string   `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}
