package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModelType identifies which provider backend serves a configured model.
type ModelType string

const (
	ModelTypeGemini     ModelType = "GEMINI"
	ModelTypeOpenRouter ModelType = "OPENROUTER"
	ModelTypeMistral    ModelType = "MISTRAL"
	ModelTypeGroq       ModelType = "GROQ"
	ModelTypeCerebras   ModelType = "CEREBRAS"
)

// KnownModelTypes lists every provider type the router can dispatch to.
var KnownModelTypes = []ModelType{
	ModelTypeGemini,
	ModelTypeOpenRouter,
	ModelTypeMistral,
	ModelTypeGroq,
	ModelTypeCerebras,
}

// Valid reports whether t names a configured provider backend.
func (t ModelType) Valid() bool {
	for _, known := range KnownModelTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AIModel is one selectable entry in the model registry. UsageCount is
// incremented by the router after each successful call and drives the
// least-used selection; it is monotonically non-decreasing.
type AIModel struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"` // Provider-side model identifier, e.g. "llama-3.3-70b"
	Type       ModelType          `bson:"type" json:"type"`
	Enabled    bool               `bson:"enabled" json:"enabled"`
	UsageCount int64              `bson:"usageCount" json:"usageCount"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
