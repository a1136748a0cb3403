package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// ImageStore persists complaint images and returns a reference clients can load.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, ref string) error
}

// ImageUpload is an image attached to a complaint submission.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func imageFieldError(message string) error {
	return apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "image", Message: message}})
}

func (s *ComplaintService) storeImage(ctx context.Context, img *ImageUpload) (string, error) {
	if s.images == nil {
		return "", imageFieldError("image uploads are not available")
	}
	limitMsg := fmt.Sprintf("must be at most %dMB", s.maxImageBytes/(1024*1024))
	if img.Size > s.maxImageBytes {
		return "", imageFieldError(limitMsg)
	}

	data, err := io.ReadAll(io.LimitReader(img.Body, s.maxImageBytes+1))
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(data)) > s.maxImageBytes {
		return "", imageFieldError(limitMsg)
	}
	if len(data) == 0 {
		return "", imageFieldError("is empty")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", imageFieldError("only image files are allowed")
	}

	key := fmt.Sprintf("complaints/%s/%s%s", s.now().UTC().Format("2006/01/02"), uuid.NewString(), mtype.Extension())
	ref, err := s.images.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mtype.String())
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("store image: %w", err))
	}
	return ref, nil
}

func (s *ComplaintService) discardImage(ctx context.Context, ref string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, ref); err != nil {
		s.logger.Warn("complaint image cleanup failed", zap.String("ref", ref), zap.Error(err))
	}
}
