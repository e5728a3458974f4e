package api

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModelHandler is the admin CRUD surface of the AI model registry.
type ModelHandler struct {
	modelService service.ModelService
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(modelService service.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// --- Request Structs ---

type ModelRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=GEMINI OPENROUTER MISTRAL GROQ CEREBRAS"`
	Enabled *bool  `json:"enabled"` // Defaults to true
}

func (r ModelRequest) enabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// --- Handler Methods ---

// Create registers a new model.
func (h *ModelHandler) Create(c *gin.Context) {
	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid model payload", bindingFields(err))
		return
	}

	model, err := h.modelService.Create(c.Request.Context(), req.Name, domain.ModelType(req.Type), req.enabled())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not create model")
		return
	}
	c.JSON(http.StatusCreated, model)
}

// List returns every registry entry.
func (h *ModelHandler) List(c *gin.Context) {
	models, err := h.modelService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not list models")
		return
	}
	if models == nil {
		models = []domain.AIModel{}
	}
	c.JSON(http.StatusOK, models)
}

// Get returns one registry entry.
func (h *ModelHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "model ID is not valid")
		return
	}

	model, err := h.modelService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			abortWithError(c, http.StatusNotFound, "model_not_found", "model not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not load model")
		return
	}
	c.JSON(http.StatusOK, model)
}

// Update rewrites a registry entry.
func (h *ModelHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "model ID is not valid")
		return
	}

	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid model payload", bindingFields(err))
		return
	}

	model, err := h.modelService.Update(c.Request.Context(), id, req.Name, domain.ModelType(req.Type), req.enabled())
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			abortWithError(c, http.StatusNotFound, "model_not_found", "model not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not update model")
		return
	}
	c.JSON(http.StatusOK, model)
}

// Delete removes a registry entry.
func (h *ModelHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "model ID is not valid")
		return
	}

	if err := h.modelService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			abortWithError(c, http.StatusNotFound, "model_not_found", "model not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not delete model")
		return
	}
	c.Status(http.StatusNoContent)
}
