package service

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// chatHistoryWindow is how many stored messages are replayed into each
// request for conversational continuity.
const chatHistoryWindow = 20

// ChatService answers free-form coaching questions with the user's profile
// and active workout plan as context, persisting the conversation.
type ChatService interface {
	Send(ctx context.Context, userID primitive.ObjectID, content string) (*domain.ChatMessage, error)
	History(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.ChatMessage, error)
}

type chatService struct {
	chatRepo    repository.ChatMessageRepository
	profileRepo repository.ProfileRepository
	planRepo    repository.PlanRepository
	router      AIRouter
}

// NewChatService creates a new instance of chatService.
func NewChatService(chatRepo repository.ChatMessageRepository, profileRepo repository.ProfileRepository, planRepo repository.PlanRepository, router AIRouter) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		profileRepo: profileRepo,
		planRepo:    planRepo,
		router:      router,
	}
}

// Send stores the user's message, asks the router once with profile, active
// plan and recent history as context, and stores and returns the reply.
func (s *chatService) Send(ctx context.Context, userID primitive.ObjectID, content string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("message cannot be empty")
	}

	msgs := []ai.Message{{Role: "system", Content: s.systemPrompt(ctx, userID)}}

	history, err := s.chatRepo.RecentByUserID(ctx, userID, chatHistoryWindow)
	if err != nil {
		log.Printf("WARN: loading chat history for %s: %v", userID.Hex(), err)
	}
	for _, m := range history {
		msgs = append(msgs, ai.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, ai.Message{Role: string(domain.ChatRoleUser), Content: content})

	// Free-form text, not JSON mode.
	answer, err := s.router.Ask(ctx, msgs, ai.Options{})
	if err != nil {
		return nil, err
	}

	userMsg := &domain.ChatMessage{UserID: userID, Role: domain.ChatRoleUser, Content: content}
	if _, err := s.chatRepo.Append(ctx, userMsg); err != nil {
		return nil, err
	}

	reply := &domain.ChatMessage{
		UserID:  userID,
		Role:    domain.ChatRoleAssistant,
		Content: answer.Text,
		Model:   answer.Model,
	}
	id, err := s.chatRepo.Append(ctx, reply)
	if err != nil {
		return nil, err
	}
	reply.ID = id
	return reply, nil
}

// History returns the most recent messages in chronological order.
func (s *chatService) History(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.ChatMessage, error) {
	return s.chatRepo.RecentByUserID(ctx, userID, limit)
}

// systemPrompt folds whatever context exists into the instruction. Missing
// profile or plan just shrinks the prompt.
func (s *chatService) systemPrompt(ctx context.Context, userID primitive.ObjectID) string {
	var b strings.Builder
	b.WriteString("You are a friendly, knowledgeable fitness and nutrition coach. ")
	b.WriteString("Answer concisely and practically. Decline medical diagnosis questions.\n")

	if profile, err := s.profileRepo.GetByUserID(ctx, userID); err == nil {
		b.WriteString("\nAbout the person you are coaching:\n")
		writeProfileSummary(&b, profile)
	}

	if plan, err := s.planRepo.GetActive(ctx, userID, domain.PlanKindWorkout); err == nil && plan.WorkoutPlan != nil {
		b.WriteString("\nTheir current workout plan, day by day:\n")
		for _, day := range plan.WorkoutPlan.Days {
			if day.IsRestDay {
				fmt.Fprintf(&b, "- %s: rest\n", day.Label)
				continue
			}
			names := make([]string, 0, len(day.Exercises))
			for _, ex := range day.Exercises {
				names = append(names, ex.Name)
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", day.Label, day.Focus, strings.Join(names, ", "))
		}
	}

	return b.String()
}
