package service

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/repository"
	"aifitness/coach-app/internal/storage"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvatarUpload carries a presigned upload URL plus the object key the client
// should report back once the PUT completes.
type AvatarUpload struct {
	UploadURL string
	ObjectKey string
}

// ProfileService manages the user's coaching profile and avatar storage.
type ProfileService interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)
	Save(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	// AvatarUploadURL presigns a direct-to-storage PUT for the user's avatar
	// and records the object key on the profile.
	AvatarUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*AvatarUpload, error)
	// AvatarDownloadURL presigns a GET for the stored avatar, when one exists.
	AvatarDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	fileStorage storage.FileStorage
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(profileRepo repository.ProfileRepository, fileStorage storage.FileStorage) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		fileStorage: fileStorage,
	}
}

// Get returns the user's profile.
func (s *profileService) Get(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// Save upserts the user's profile.
func (s *profileService) Save(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if profile.UserID == primitive.NilObjectID {
		return nil, errors.New("profile requires a user ID")
	}
	if profile.Location != "" {
		switch profile.Location {
		case domain.LocationHome, domain.LocationGym, domain.LocationOutdoor:
		default:
			return nil, fmt.Errorf("invalid training location %q", profile.Location)
		}
	}
	return s.profileRepo.Upsert(ctx, profile)
}

// AvatarUploadURL presigns an upload and persists the new object key.
func (s *profileService) AvatarUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*AvatarUpload, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectKey := fmt.Sprintf("avatars/%s/%s", userID.Hex(), uuid.NewString())

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	// Replace the previous avatar object, if any.
	if profile.AvatarKey != "" && profile.AvatarKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, profile.AvatarKey)
	}
	profile.AvatarKey = objectKey
	if _, err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	return &AvatarUpload{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// AvatarDownloadURL presigns a GET for the stored avatar.
func (s *profileService) AvatarDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	if profile.AvatarKey == "" {
		return "", repository.ErrNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, profile.AvatarKey, storage.DefaultPresignedURLExpiry)
}
