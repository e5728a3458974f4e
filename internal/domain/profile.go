package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingLocation constrains where the user trains. The prompt builder uses
// it to steer equipment selection.
type TrainingLocation string

const (
	LocationHome    TrainingLocation = "home"
	LocationGym     TrainingLocation = "gym"
	LocationOutdoor TrainingLocation = "outdoor"
)

// Profile holds the coaching inputs for a user. Plan generation refuses to
// run without one.
type Profile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"` // One profile per user
	Goal            string             `bson:"goal,omitempty" json:"goal,omitempty"`                       // e.g. "lose weight", "build muscle"
	ExperienceLevel string             `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"` // e.g. "beginner", "intermediate", "advanced"
	DaysPerWeek     int                `bson:"daysPerWeek,omitempty" json:"daysPerWeek,omitempty"`
	Location        TrainingLocation   `bson:"location,omitempty" json:"location,omitempty"`
	Equipment       []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Limitations     string             `bson:"limitations,omitempty" json:"limitations,omitempty"` // Injuries, restrictions
	Language        string             `bson:"language,omitempty" json:"language,omitempty"`       // Target language for generated plans
	Age             int                `bson:"age,omitempty" json:"age,omitempty"`
	Sex             string             `bson:"sex,omitempty" json:"sex,omitempty"`
	HeightCm        float64            `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg        float64            `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	AvatarKey       string             `bson:"avatarKey,omitempty" json:"avatarKey,omitempty"` // Object key in file storage
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
