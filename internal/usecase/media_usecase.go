package usecase

import (
	"context"
	"io"
	"strings"

	"chatdash/pkg/errors"
)

const MaxMediaSize = 10 << 20

type MediaUseCase struct {
	storage MediaStorage
}

// NewMediaUseCase builds the use case. A nil storage rejects every upload.
func NewMediaUseCase(storage MediaStorage) *MediaUseCase {
	return &MediaUseCase{
		storage: storage,
	}
}

func allowedMediaType(contentType string) bool {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return true
	case contentType == "video/mp4", contentType == "audio/mpeg", contentType == "application/pdf":
		return true
	default:
		return false
	}
}

// UploadMedia stores an attachment for userID and returns the URL to put in a message's mediaUrl.
func (uc *MediaUseCase) UploadMedia(ctx context.Context, userID string, file io.Reader, contentType string, size int64) (string, error) {
	if uc.storage == nil {
		return "", errors.Internal("Media storage is not configured", nil)
	}
	if size <= 0 || size > MaxMediaSize {
		return "", errors.BadRequest("File must be between 1 byte and 10MB", nil)
	}
	if !allowedMediaType(contentType) {
		return "", errors.BadRequest("Unsupported media type "+contentType, nil)
	}

	url, err := uc.storage.UploadFile(ctx, file, contentType, "media/"+userID)
	if err != nil {
		return "", errors.Internal("Failed to upload media", err)
	}
	return url, nil
}
