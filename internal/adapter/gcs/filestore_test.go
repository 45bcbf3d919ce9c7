package gcs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type uploaderStub struct {
	err     error
	bucket  string
	object  string
	ctype   string
	content []byte
}

func (u *uploaderStub) Upload(_ context.Context, bucket, object, contentType string, content []byte) error {
	u.bucket, u.object, u.ctype, u.content = bucket, object, contentType, content
	return u.err
}

func newTestStore(up uploader) *FileStore {
	return &FileStore{
		bucket:   "docs",
		uploader: up,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:      func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestStoreUploadsAndReturnsHandle(t *testing.T) {
	up := &uploaderStub{}
	store := newTestStore(up)

	handle, err := store.Store(context.Background(), []byte("%PDF-1.4"), "purchase_order/7/purchase_order-abc.pdf", "purchase_order")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up.bucket != "docs" || up.object != "purchase_order/7/purchase_order-abc.pdf" || up.ctype != "application/pdf" {
		t.Fatalf("unexpected upload: %+v", up)
	}
	if handle.Name != "purchase_order-abc.pdf" || handle.Path != "gs://docs/purchase_order/7/purchase_order-abc.pdf" {
		t.Fatalf("unexpected handle: %+v", handle)
	}
	if handle.Kind != "purchase_order" || !handle.CreatedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected handle metadata: %+v", handle)
	}
}

func TestStoreDetectsContentTypeWithoutExtension(t *testing.T) {
	up := &uploaderStub{}
	if _, err := newTestStore(up).Store(context.Background(), []byte("%PDF-1.4 body"), "blob", "invoice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up.ctype != "application/pdf" {
		t.Fatalf("expected sniffed pdf content type, got %q", up.ctype)
	}
}

func TestStoreUploadError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := newTestStore(&uploaderStub{err: boom}).Store(context.Background(), nil, "x.pdf", "quote"); !errors.Is(err, boom) {
		t.Fatalf("expected upload error, got %v", err)
	}
}
