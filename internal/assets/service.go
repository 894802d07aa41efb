// Package assets stores uploaded inspiration images and floor plans in
// object storage and produces the asset records attached to a draft.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"hearth/api/internal/intake"
	"hearth/api/internal/util"
)

const downloadURLExpiry = 24 * time.Hour

var (
	ErrUnknownKind     = errors.New("assets: unknown asset kind")
	ErrUnsupportedMime = errors.New("assets: unsupported content type")
	ErrTooLarge        = errors.New("assets: file too large")
)

type kindPolicy struct {
	maxBytes int64
	// allowed content types mapped to the stored file extension
	extByMime map[string]string
}

var imagePolicy = kindPolicy{
	maxBytes: 10 << 20,
	extByMime: map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	},
}

// Policies keyed by the draft's asset kinds. Floor plans also accept PDF
// and get a bigger cap; everything else is an image.
var policies = map[string]kindPolicy{
	intake.AssetInspiration: imagePolicy,
	intake.AssetAvoid:       imagePolicy,
	intake.AssetReference:   imagePolicy,
	intake.AssetPlan: {
		maxBytes: 20 << 20,
		extByMime: map[string]string{
			"image/jpeg":      ".jpg",
			"image/png":       ".png",
			"application/pdf": ".pdf",
		},
	},
}

// Blob is the object storage operations the service needs.
type Blob interface {
	Put(ctx context.Context, key, mimeType string, size int64, r io.Reader) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Service validates and stores uploads.
type Service struct {
	blob Blob
}

// NewService creates an asset service over the given blob storage.
func NewService(blob Blob) *Service {
	return &Service{blob: blob}
}

// Upload validates the file against its kind policy, writes it to object
// storage under the draft's prefix and returns the asset record to attach.
func (s *Service) Upload(ctx context.Context, draftID, kind, roomType, mimeType string, size int64, r io.Reader) (intake.Asset, error) {
	policy, ok := policies[kind]
	if !ok {
		return intake.Asset{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	ext, ok := policy.extByMime[mimeType]
	if !ok {
		return intake.Asset{}, fmt.Errorf("%w: %q for kind %q", ErrUnsupportedMime, mimeType, kind)
	}
	if size <= 0 || size > policy.maxBytes {
		return intake.Asset{}, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, policy.maxBytes)
	}

	id := util.NewID("ast")
	key := objectKey(draftID, id, ext)
	if err := s.blob.Put(ctx, key, mimeType, size, r); err != nil {
		return intake.Asset{}, fmt.Errorf("store asset: %w", err)
	}

	url, err := s.blob.PresignGet(ctx, key, downloadURLExpiry)
	if err != nil {
		return intake.Asset{}, fmt.Errorf("presign asset url: %w", err)
	}

	return intake.Asset{
		ID:        id,
		Kind:      kind,
		RoomType:  roomType,
		URL:       url,
		MimeType:  mimeType,
		SizeBytes: size,
	}, nil
}

func objectKey(draftID, assetID, ext string) string {
	return "drafts/" + draftID + "/" + assetID + ext
}
