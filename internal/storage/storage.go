// Package storage persists uploaded post images and addresses them by opaque key.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	// Register decoders used by image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"quill/internal/models"

	"github.com/google/uuid"
)

// PostsPrefix is the key namespace for post images.
const PostsPrefix = "posts"

// BlobStore stores image bytes and returns a stable key.
type BlobStore interface {
	Put(ctx context.Context, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// FileStore keeps blobs on the local filesystem under Root.
type FileStore struct {
	Root     string
	MaxBytes int64
}

// NewFileStore creates the root directory if needed and returns a FileStore.
func NewFileStore(root string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(root, PostsPrefix), 0o750); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &FileStore{Root: root, MaxBytes: maxBytes}, nil
}

// Put validates that r holds a supported image and durably writes it.
func (s *FileStore) Put(ctx context.Context, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if len(data) == 0 {
		return "", models.NewFieldError("image", "The submitted file is empty.")
	}
	if int64(len(data)) > s.MaxBytes {
		return "", models.NewFieldError("image", fmt.Sprintf("File too large (max %dMB).", s.MaxBytes/(1024*1024)))
	}

	ext, err := Sniff(contentType, data)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := path.Join(PostsPrefix, uuid.NewString()+ext)
	if err := s.writeAtomic(key, data); err != nil {
		return "", models.NewInternalError(err)
	}
	return key, nil
}

func (s *FileStore) writeAtomic(key string, data []byte) error {
	dst := s.path(key)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o640); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Open returns a reader for key.
func (s *FileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, models.NewNotFoundError("Image", key)
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.NewNotFoundError("Image", key)
		}
		return nil, models.NewInternalError(err)
	}
	return f, nil
}

// Exists reports whether key resolves to a stored blob.
func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	if !validKey(key) {
		return false, nil
	}
	_, err := os.Stat(s.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, models.NewInternalError(err)
	}
}

// Delete removes key. Missing blobs are not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Root, filepath.FromSlash(key))
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	return path.Clean(key) == key && !strings.HasPrefix(key, "..")
}

// Sniff checks that data is a GIF, PNG, JPEG or WebP image consistent with the
// declared content type and returns the file extension to store it under.
func Sniff(declared string, data []byte) (string, error) {
	invalid := models.NewFieldError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")

	declared = normalizeContentType(declared)
	if declared != "" && declared != "application/octet-stream" && !strings.HasPrefix(declared, "image/") {
		return "", invalid
	}

	detected := normalizeContentType(http.DetectContentType(data))
	if !isAllowedImageMIME(detected) {
		return "", invalid
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", invalid
	}
	mimeType := decodedFormatToMime(format)
	if mimeType == "" || !isMatchingContentType(detected, mimeType) {
		return "", invalid
	}
	if strings.HasPrefix(declared, "image/") && !isMatchingContentType(declared, mimeType) {
		return "", invalid
	}

	return formatExtension(format), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func formatExtension(format string) string {
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}
