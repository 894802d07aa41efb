package assets

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"hearth/api/internal/intake"
)

type fakeBlob struct {
	puts    map[string]string // key -> content type
	putErr  error
	signErr error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{puts: map[string]string{}}
}

func (f *fakeBlob) Put(_ context.Context, key, mimeType string, _ int64, r io.Reader) error {
	if f.putErr != nil {
		return f.putErr
	}
	io.Copy(io.Discard, r)
	f.puts[key] = mimeType
	return nil
}

func (f *fakeBlob) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "http://blob.local/" + key + "?sig=abc", nil
}

func TestUploadInspirationImage(t *testing.T) {
	blob := newFakeBlob()
	svc := NewService(blob)

	asset, err := svc.Upload(context.Background(), "d1", intake.AssetInspiration, "living_room",
		"image/jpeg", 2048, strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if asset.Kind != intake.AssetInspiration || asset.RoomType != "living_room" {
		t.Errorf("unexpected asset: %+v", asset)
	}
	if asset.MimeType != "image/jpeg" || asset.SizeBytes != 2048 {
		t.Errorf("metadata not carried: %+v", asset)
	}
	if !strings.HasPrefix(asset.URL, "http://blob.local/drafts/d1/") {
		t.Errorf("unexpected URL %q", asset.URL)
	}
	if !strings.Contains(asset.URL, ".jpg") {
		t.Errorf("expected .jpg extension in %q", asset.URL)
	}
	if len(blob.puts) != 1 {
		t.Fatalf("expected exactly one stored object, got %d", len(blob.puts))
	}
}

func TestUploadFloorplanPDF(t *testing.T) {
	blob := newFakeBlob()
	svc := NewService(blob)

	asset, err := svc.Upload(context.Background(), "d1", intake.AssetPlan, "",
		"application/pdf", 1<<20, strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.Contains(asset.URL, ".pdf") {
		t.Errorf("expected .pdf extension in %q", asset.URL)
	}
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	svc := NewService(newFakeBlob())
	_, err := svc.Upload(context.Background(), "d1", "selfie", "", "image/png", 100, strings.NewReader("x"))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestUploadRejectsUnsupportedMime(t *testing.T) {
	svc := NewService(newFakeBlob())
	// PDFs are valid floor plans but not inspirations
	_, err := svc.Upload(context.Background(), "d1", intake.AssetInspiration, "", "application/pdf", 100, strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedMime) {
		t.Fatalf("expected ErrUnsupportedMime, got %v", err)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := NewService(newFakeBlob())
	_, err := svc.Upload(context.Background(), "d1", intake.AssetInspiration, "", "image/png", (10<<20)+1, strings.NewReader("x"))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	_, err = svc.Upload(context.Background(), "d1", intake.AssetInspiration, "", "image/png", 0, strings.NewReader(""))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge for empty file, got %v", err)
	}
}

func TestUploadPropagatesStorageError(t *testing.T) {
	blob := newFakeBlob()
	blob.putErr = errors.New("bucket offline")
	svc := NewService(blob)
	_, err := svc.Upload(context.Background(), "d1", intake.AssetInspiration, "", "image/png", 100, strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "bucket offline") {
		t.Fatalf("expected storage error, got %v", err)
	}
}
