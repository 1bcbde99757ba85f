package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/freshlane/wholesale-admin/internal/gcp"
	"github.com/freshlane/wholesale-admin/internal/models"
)

// ErrUnsupportedImage is returned for content types the storefront cannot
// display.
var ErrUnsupportedImage = errors.New("unsupported image content type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// SlidersStore is the slice of the document store the slider service needs.
type SlidersStore interface {
	CreateSlider(ctx context.Context, s models.SliderImage) (string, error)
	ListSliders(ctx context.Context) ([]models.SliderImage, error)
	SetSliderActive(ctx context.Context, id string, active bool) error
}

// SlidersService owns promotional slider images: bytes live in a GCS bucket,
// metadata in Firestore.
type SlidersService struct {
	store         SlidersStore
	storageClient *storage.Client
	bucketName    string
	logger        *slog.Logger
}

// NewSliders creates the slider service over an existing storage client.
func NewSliders(store SlidersStore, storageClient *storage.Client, bucketName string, logger *slog.Logger) (*SlidersService, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("slider bucket name must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SlidersService{
		store:         store,
		storageClient: storageClient,
		bucketName:    bucketName,
		logger:        logger,
	}, nil
}

// Upload stores the image bytes and records the slider document, returning
// the new document ID. Object names are UUID based so re-uploads never
// collide with existing banners.
func (s *SlidersService) Upload(ctx context.Context, title, contentType string, data []byte) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image payload is empty")
	}

	objectName := fmt.Sprintf("sliders/%s%s", uuid.NewString(), ext)
	bucket := s.storageClient.Bucket(s.bucketName)
	url, err := gcp.UploadImageAtomically(ctx, bucket, s.bucketName, objectName, contentType, data)
	if err != nil {
		return "", err
	}

	id, err := s.store.CreateSlider(ctx, models.SliderImage{
		Title:    title,
		ImageURL: url,
		Active:   true,
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("Slider uploaded.", "sliderId", id, "object", objectName)
	return id, nil
}

// List returns every slider document.
func (s *SlidersService) List(ctx context.Context) ([]models.SliderImage, error) {
	return s.store.ListSliders(ctx)
}

// SetActive toggles a slider's visibility. The image object is kept; sliders
// are hidden rather than destroyed so a campaign can be re-run.
func (s *SlidersService) SetActive(ctx context.Context, id string, active bool) error {
	return s.store.SetSliderActive(ctx, id, active)
}
