package ai

import (
	"aifitness/coach-app/internal/config"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
)

// Answer is the router's result: the generated text plus which registry
// model produced it.
type Answer struct {
	Text  string
	Model string
	Type  domain.ModelType
}

// Router is the single integration point for every AI caller. It selects the
// least-used enabled model from the registry, dispatches to the matching
// provider adapter and records usage on success. Callers stay
// provider-agnostic.
type Router struct {
	registry  repository.AIModelRepository
	providers map[domain.ModelType]Provider
}

// NewRouter creates a router with the full adapter set wired from config.
func NewRouter(registry repository.AIModelRepository, cfg config.AIConfig) *Router {
	r := &Router{
		registry:  registry,
		providers: make(map[domain.ModelType]Provider),
	}
	r.Register(domain.ModelTypeGemini, NewGeminiProvider(cfg.GeminiAPIKey))
	r.Register(domain.ModelTypeOpenRouter, NewOpenRouterProvider(cfg.OpenRouterAPIKey))
	r.Register(domain.ModelTypeMistral, NewMistralProvider(cfg.MistralAPIKey))
	r.Register(domain.ModelTypeGroq, NewGroqProvider(cfg.GroqAPIKey))
	r.Register(domain.ModelTypeCerebras, NewCerebrasProvider(cfg.CerebrasAPIKey))
	return r
}

// NewRouterWithProviders creates a router over an explicit adapter map.
func NewRouterWithProviders(registry repository.AIModelRepository, providers map[domain.ModelType]Provider) *Router {
	return &Router{registry: registry, providers: providers}
}

// Register adds or replaces the adapter for a provider type.
func (r *Router) Register(t domain.ModelType, p Provider) {
	r.providers[t] = p
}

// Ask picks a model, dispatches the messages to its provider and records the
// usage. Selection happens fresh on every call, so a retrying caller may
// land on a different provider each attempt.
func (r *Router) Ask(ctx context.Context, msgs []Message, opts Options) (*Answer, error) {
	model, err := r.registry.PickLeastUsed(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoModelsAvailable
		}
		return nil, fmt.Errorf("ai: pick model: %w", err)
	}

	provider, ok := r.providers[model.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModelType, model.Type)
	}

	text, err := provider.Send(ctx, msgs, opts, model.Name)
	if err != nil {
		return nil, err
	}

	// Usage accounting only steers future selection; losing an increment is
	// not worth failing a successful generation over.
	if err := r.registry.IncrementUsage(ctx, model); err != nil {
		log.Printf("WARN: failed to record usage for model %s/%s: %v", model.Type, model.Name, err)
	}

	return &Answer{Text: text, Model: model.Name, Type: model.Type}, nil
}
