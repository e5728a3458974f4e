package api

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"aifitness/coach-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProfileHandler exposes the coaching profile and avatar endpoints.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// --- Request/Response Structs ---

type ProfileRequest struct {
	Goal            string   `json:"goal"`
	ExperienceLevel string   `json:"experienceLevel"`
	DaysPerWeek     int      `json:"daysPerWeek" binding:"omitempty,min=1,max=7"`
	Location        string   `json:"location" binding:"omitempty,oneof=home gym outdoor"`
	Equipment       []string `json:"equipment"`
	Limitations     string   `json:"limitations"`
	Language        string   `json:"language"`
	Age             int      `json:"age" binding:"omitempty,min=13,max=120"`
	Sex             string   `json:"sex"`
	HeightCm        float64  `json:"heightCm" binding:"omitempty,min=50,max=280"`
	WeightKg        float64  `json:"weightKg" binding:"omitempty,min=20,max=400"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType"`
}

type AvatarUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Handler Methods ---

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, "profile_not_found", "profile not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Put upserts the caller's profile.
func (h *ProfileHandler) Put(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid profile payload", bindingFields(err))
		return
	}

	profile := &domain.Profile{
		UserID:          userID,
		Goal:            req.Goal,
		ExperienceLevel: req.ExperienceLevel,
		DaysPerWeek:     req.DaysPerWeek,
		Location:        domain.TrainingLocation(req.Location),
		Equipment:       req.Equipment,
		Limitations:     req.Limitations,
		Language:        req.Language,
		Age:             req.Age,
		Sex:             req.Sex,
		HeightCm:        req.HeightCm,
		WeightKg:        req.WeightKg,
	}

	saved, err := h.profileService.Save(c.Request.Context(), profile)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not save profile")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// AvatarUploadURL presigns a direct upload for the caller's avatar.
func (h *ProfileHandler) AvatarUploadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	// Body is optional; an empty request defaults the content type.
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = AvatarUploadRequest{}
	}

	upload, err := h.profileService.AvatarUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, "profile_not_found", "create a profile before uploading an avatar")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not create upload URL")
		return
	}
	c.JSON(http.StatusOK, AvatarUploadResponse{UploadURL: upload.UploadURL, ObjectKey: upload.ObjectKey})
}

// AvatarDownloadURL presigns a read of the stored avatar.
func (h *ProfileHandler) AvatarDownloadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	url, err := h.profileService.AvatarDownloadURL(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) || errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "avatar_not_found", "no avatar uploaded")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not create download URL")
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
