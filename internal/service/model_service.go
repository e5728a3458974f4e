package service

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrModelNotFound = errors.New("ai model not found")
)

// ModelService is the admin-facing CRUD surface of the model registry.
// Usage counters are owned by the router and never writable here.
type ModelService interface {
	Create(ctx context.Context, name string, modelType domain.ModelType, enabled bool) (*domain.AIModel, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.AIModel, error)
	List(ctx context.Context) ([]domain.AIModel, error)
	Update(ctx context.Context, id primitive.ObjectID, name string, modelType domain.ModelType, enabled bool) (*domain.AIModel, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type modelService struct {
	modelRepo repository.AIModelRepository
}

// NewModelService creates a new instance of modelService.
func NewModelService(modelRepo repository.AIModelRepository) ModelService {
	return &modelService{modelRepo: modelRepo}
}

func validateModel(name string, modelType domain.ModelType) error {
	if name == "" {
		return errors.New("model name cannot be empty")
	}
	if !modelType.Valid() {
		return fmt.Errorf("unknown model type %q (known: %v)", modelType, domain.KnownModelTypes)
	}
	return nil
}

// Create registers a new model entry.
func (s *modelService) Create(ctx context.Context, name string, modelType domain.ModelType, enabled bool) (*domain.AIModel, error) {
	if err := validateModel(name, modelType); err != nil {
		return nil, err
	}

	model := &domain.AIModel{
		Name:    name,
		Type:    modelType,
		Enabled: enabled,
	}
	id, err := s.modelRepo.Create(ctx, model)
	if err != nil {
		return nil, err
	}
	model.ID = id
	return model, nil
}

// Get returns one registry entry.
func (s *modelService) Get(ctx context.Context, id primitive.ObjectID) (*domain.AIModel, error) {
	model, err := s.modelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return model, nil
}

// List returns every registry entry, including disabled ones.
func (s *modelService) List(ctx context.Context) ([]domain.AIModel, error) {
	return s.modelRepo.List(ctx)
}

// Update rewrites name, type and enabled on an existing entry. The usage
// counter is deliberately untouched so edits never skew rotation.
func (s *modelService) Update(ctx context.Context, id primitive.ObjectID, name string, modelType domain.ModelType, enabled bool) (*domain.AIModel, error) {
	if err := validateModel(name, modelType); err != nil {
		return nil, err
	}

	model, err := s.modelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}

	model.Name = name
	model.Type = modelType
	model.Enabled = enabled
	if err := s.modelRepo.Update(ctx, model); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return s.modelRepo.GetByID(ctx, id)
}

// Delete removes a registry entry.
func (s *modelService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.modelRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrModelNotFound
	}
	return err
}
