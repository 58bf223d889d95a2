package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/repository/storage"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	DisplayWidth     = 800
	JPEGQuality      = 85

	presignExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat        = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData          = errors.New("invalid image data")
	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
	ErrNoReceipt                   = errors.New("expense has no receipt")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptURLs contains presigned URLs for the receipt variants
type ReceiptURLs struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// ReceiptService handles expense receipt processing and storage
type ReceiptService struct {
	storage     storage.ReceiptRepository
	expenseRepo domain.ExpenseRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository, expenseRepo domain.ExpenseRepository) *ReceiptService {
	return &ReceiptService{
		storage:     storage,
		expenseRepo: expenseRepo,
	}
}

// IsEnabled indicates whether receipt storage is configured
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidateReceipt validates receipt format and size
func (s *ReceiptService) ValidateReceipt(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

// validateAndDecode validates the image and returns the decoded image
func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}

	return img, nil
}

// AttachReceipt validates, resizes and stores a receipt image for an
// expense, replacing any previous one
func (s *ReceiptService) AttachReceipt(ctx context.Context, ownerID uuid.UUID, expenseID int32, data []byte, filename string) (*domain.Expense, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	expense, err := s.expenseRepo.GetByID(ownerID, expenseID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	// Replace, don't accumulate
	if expense.ReceiptPath != nil {
		s.deleteVariants(ctx, *expense.ReceiptPath)
	}

	basePath := fmt.Sprintf("%s/expenses/%d/%s", ownerID, expenseID, uuid.New().String())

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // 0 means keep original size
	}

	var uploaded []string
	for _, variant := range variants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := fmt.Sprintf("%s_%s.jpg", basePath, variant.name)
		if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			// Best-effort cleanup of the variants that made it
			for _, path := range uploaded {
				_ = s.storage.Delete(ctx, path)
			}
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	if err := s.expenseRepo.UpdateReceipt(ownerID, expenseID, &basePath); err != nil {
		return nil, err
	}

	expense.ReceiptPath = &basePath
	return expense, nil
}

// DetachReceipt removes an expense's receipt from storage and clears the
// reference
func (s *ReceiptService) DetachReceipt(ctx context.Context, ownerID uuid.UUID, expenseID int32) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageNotConfigured
	}

	expense, err := s.expenseRepo.GetByID(ownerID, expenseID)
	if err != nil {
		return err
	}
	if expense.ReceiptPath == nil {
		return ErrNoReceipt
	}

	s.deleteVariants(ctx, *expense.ReceiptPath)
	return s.expenseRepo.UpdateReceipt(ownerID, expenseID, nil)
}

// ReceiptURLs generates short-lived presigned URLs for all variants of an
// expense's receipt
func (s *ReceiptService) ReceiptURLs(ctx context.Context, ownerID uuid.UUID, expenseID int32) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	expense, err := s.expenseRepo.GetByID(ownerID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.ReceiptPath == nil {
		return nil, ErrNoReceipt
	}

	urls := &ReceiptURLs{}
	targets := []struct {
		variant string
		dest    *string
	}{
		{"thumb", &urls.ThumbnailURL},
		{"display", &urls.DisplayURL},
		{"original", &urls.OriginalURL},
	}
	for _, t := range targets {
		url, err := s.storage.GeneratePresignedURL(ctx, fmt.Sprintf("%s_%s.jpg", *expense.ReceiptPath, t.variant), presignExpiry)
		if err != nil {
			return nil, err
		}
		*t.dest = url
	}
	return urls, nil
}

// deleteVariants removes all stored variants of a receipt, best effort
func (s *ReceiptService) deleteVariants(ctx context.Context, basePath string) {
	for _, variant := range []string{"thumb", "display", "original"} {
		objectPath := fmt.Sprintf("%s_%s.jpg", basePath, variant)
		if err := s.storage.Delete(ctx, objectPath); err != nil {
			log.Warn().Err(err).Str("object_path", objectPath).Msg("Failed to delete receipt variant")
		}
	}
}

// GetReceiptContentType returns the content type for a file extension
func GetReceiptContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedReceiptExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
