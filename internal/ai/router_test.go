package ai

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRegistry implements repository.AIModelRepository over a slice. Pick
// order mimics the mongo sort: usageCount, then updatedAt, then id.
type fakeRegistry struct {
	models     []*domain.AIModel
	increments []string // Model names, in increment order
	pickErr    error
}

func (f *fakeRegistry) Create(ctx context.Context, m *domain.AIModel) (primitive.ObjectID, error) {
	m.ID = primitive.NewObjectID()
	f.models = append(f.models, m)
	return m.ID, nil
}

func (f *fakeRegistry) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AIModel, error) {
	for _, m := range f.models {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRegistry) List(ctx context.Context) ([]domain.AIModel, error) {
	out := make([]domain.AIModel, len(f.models))
	for i, m := range f.models {
		out[i] = *m
	}
	return out, nil
}

func (f *fakeRegistry) Update(ctx context.Context, m *domain.AIModel) error { return nil }

func (f *fakeRegistry) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

func (f *fakeRegistry) PickLeastUsed(ctx context.Context) (*domain.AIModel, error) {
	if f.pickErr != nil {
		return nil, f.pickErr
	}
	var best *domain.AIModel
	for _, m := range f.models {
		if !m.Enabled {
			continue
		}
		if best == nil || m.UsageCount < best.UsageCount ||
			(m.UsageCount == best.UsageCount && m.UpdatedAt.Before(best.UpdatedAt)) {
			best = m
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	picked := *best
	return &picked, nil
}

func (f *fakeRegistry) IncrementUsage(ctx context.Context, model *domain.AIModel) error {
	for _, m := range f.models {
		if m.ID == model.ID {
			m.UsageCount++
			f.increments = append(f.increments, m.Name)
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeProvider records calls and returns a canned answer or error.
type fakeProvider struct {
	name   string
	text   string
	err    error
	models []string // Model names received, in call order
}

func (p *fakeProvider) Send(ctx context.Context, msgs []Message, opts Options, model string) (string, error) {
	p.models = append(p.models, model)
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func (p *fakeProvider) Name() string { return p.name }

func seedRegistry(usages map[string]int64) *fakeRegistry {
	reg := &fakeRegistry{}
	for name, usage := range usages {
		reg.models = append(reg.models, &domain.AIModel{
			ID:         primitive.NewObjectID(),
			Name:       name,
			Type:       domain.ModelTypeGroq,
			Enabled:    true,
			UsageCount: usage,
		})
	}
	return reg
}

func TestRouterAsksLeastUsedModel(t *testing.T) {
	reg := seedRegistry(map[string]int64{"busy": 10, "idle": 2})
	provider := &fakeProvider{name: "Groq", text: "answer"}
	router := NewRouterWithProviders(reg, map[domain.ModelType]Provider{
		domain.ModelTypeGroq: provider,
	})

	answer, err := router.Ask(context.Background(), []Message{{Role: "user", Content: "q"}}, Options{})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Text != "answer" {
		t.Errorf("text = %q", answer.Text)
	}
	if answer.Model != "idle" {
		t.Errorf("model = %q, want idle", answer.Model)
	}
	if answer.Type != domain.ModelTypeGroq {
		t.Errorf("type = %q", answer.Type)
	}
	if len(provider.models) != 1 || provider.models[0] != "idle" {
		t.Errorf("provider received %v", provider.models)
	}
}

func TestRouterIncrementsUsageOnSuccess(t *testing.T) {
	reg := seedRegistry(map[string]int64{"a": 0, "b": 0})
	provider := &fakeProvider{name: "Groq", text: "ok"}
	router := NewRouterWithProviders(reg, map[domain.ModelType]Provider{
		domain.ModelTypeGroq: provider,
	})

	// Each successful call bumps the picked model, rotating across both.
	for i := 0; i < 4; i++ {
		if _, err := router.Ask(context.Background(), []Message{{Role: "user", Content: "q"}}, Options{}); err != nil {
			t.Fatalf("Ask %d: %v", i, err)
		}
	}
	if len(reg.increments) != 4 {
		t.Fatalf("got %d increments, want 4", len(reg.increments))
	}
	counts := map[string]int{}
	for _, name := range reg.increments {
		counts[name]++
	}
	if counts["a"] != 2 || counts["b"] != 2 {
		t.Errorf("rotation uneven: %v", counts)
	}
}

func TestRouterNoUsageIncrementOnFailure(t *testing.T) {
	reg := seedRegistry(map[string]int64{"only": 0})
	provider := &fakeProvider{name: "Groq", err: errors.New("boom")}
	router := NewRouterWithProviders(reg, map[domain.ModelType]Provider{
		domain.ModelTypeGroq: provider,
	})

	if _, err := router.Ask(context.Background(), []Message{{Role: "user", Content: "q"}}, Options{}); err == nil {
		t.Fatal("expected error")
	}
	if len(reg.increments) != 0 {
		t.Errorf("usage incremented on failure: %v", reg.increments)
	}
}

func TestRouterEmptyRegistry(t *testing.T) {
	router := NewRouterWithProviders(&fakeRegistry{}, map[domain.ModelType]Provider{})

	_, err := router.Ask(context.Background(), []Message{{Role: "user", Content: "q"}}, Options{})
	if !errors.Is(err, ErrNoModelsAvailable) {
		t.Errorf("error = %v, want ErrNoModelsAvailable", err)
	}
}

func TestRouterUnsupportedModelType(t *testing.T) {
	reg := seedRegistry(map[string]int64{"m": 0})
	// No adapter registered for the model's type.
	router := NewRouterWithProviders(reg, map[domain.ModelType]Provider{})

	_, err := router.Ask(context.Background(), []Message{{Role: "user", Content: "q"}}, Options{})
	if !errors.Is(err, ErrUnsupportedModelType) {
		t.Errorf("error = %v, want ErrUnsupportedModelType", err)
	}
}

func TestRouterSkipsDisabledModels(t *testing.T) {
	reg := seedRegistry(map[string]int64{"enabled": 100})
	reg.models = append(reg.models, &domain.AIModel{
		ID:      primitive.NewObjectID(),
		Name:    "disabled",
		Type:    domain.ModelTypeGroq,
		Enabled: false,
	})
	provider := &fakeProvider{name: "Groq", text: "ok"}
	router := NewRouterWithProviders(reg, map[domain.ModelType]Provider{
		domain.ModelTypeGroq: provider,
	})

	answer, err := router.Ask(context.Background(), []Message{{Role: "user", Content: "q"}}, Options{})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Model != "enabled" {
		t.Errorf("model = %q, disabled model selected", answer.Model)
	}
}
