package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRole mirrors the role tags used on the provider wire.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one persisted turn of the assistant conversation.
// System prompts are constructed per request and never stored.
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Role      ChatRole           `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	Model     string             `bson:"model,omitempty" json:"model,omitempty"` // Set on assistant messages
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
