package usecase

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/good-pics/backend/internal/domain"
	"github.com/good-pics/backend/pkg/flux"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrEmptyImage    = errors.New("no image data received")
)

// ImageGenerator abstracts the flux client so tests can stub generation.
type ImageGenerator interface {
	Generate(req *flux.GenerateRequest) (*flux.GenerateResponse, error)
}

type ImageUsecase struct {
	imageRepo  domain.ImageRepository
	generator  ImageGenerator
	uploadsDir string
	baseURL    string
}

type GenerateImageInput struct {
	Prompt string
	Size   string
	N      int
	Theme  string
}

type SavedImage struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

func NewImageUsecase(imageRepo domain.ImageRepository, generator ImageGenerator, uploadsDir, baseURL string) *ImageUsecase {
	return &ImageUsecase{
		imageRepo:  imageRepo,
		generator:  generator,
		uploadsDir: uploadsDir,
		baseURL:    baseURL,
	}
}

// GenerateAndSave runs a generation, writes the first image as a PNG under
// the uploads directory and records it in the user's gallery.
func (u *ImageUsecase) GenerateAndSave(userID uuid.UUID, input GenerateImageInput) (*SavedImage, error) {
	data, filename, err := u.generatePNG(input)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(u.uploadsDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(u.uploadsDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}

	url := u.baseURL + "/" + filename
	image := &domain.Image{
		UserID: userID,
		URL:    url,
		Prompt: input.Prompt,
		Theme:  input.Theme,
		Size:   input.Size,
	}
	if err := u.imageRepo.Create(image); err != nil {
		return nil, err
	}

	return &SavedImage{URL: url, Size: int64(len(data))}, nil
}

// GenerateFile runs a generation and returns the PNG bytes directly, for
// download without touching the gallery.
func (u *ImageUsecase) GenerateFile(input GenerateImageInput) ([]byte, string, error) {
	return u.generatePNG(input)
}

func (u *ImageUsecase) generatePNG(input GenerateImageInput) ([]byte, string, error) {
	result, err := u.generator.Generate(&flux.GenerateRequest{
		Prompt: input.Prompt,
		Size:   input.Size,
		N:      input.N,
	})
	if err != nil {
		return nil, "", err
	}

	encoded := result.Data[0].B64JSON
	if encoded == "" {
		return nil, "", ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image data: %w", err)
	}

	filename := fmt.Sprintf("image_%d.png", time.Now().UnixMilli())
	return data, filename, nil
}

func (u *ImageUsecase) UserImages(userID uuid.UUID) ([]*domain.Image, error) {
	return u.imageRepo.ListByUser(userID)
}

// DeleteUserImage removes an image only if it belongs to the caller.
func (u *ImageUsecase) DeleteUserImage(imageID, userID uuid.UUID) error {
	image, err := u.imageRepo.GetByID(imageID)
	if err != nil {
		return err
	}
	if image == nil || image.UserID != userID {
		return ErrImageNotFound
	}
	return u.imageRepo.Delete(imageID)
}
