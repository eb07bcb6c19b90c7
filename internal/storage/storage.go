// Package storage keeps the original uploads behind saved sessions.
package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrInvalidKey  = errors.New("invalid storage key")
	ErrInvalidName = errors.New("invalid file name")

	// ErrObjectNotFound is returned by Open for keys with no object.
	ErrObjectNotFound = errors.New("object not found")
)

// ObjectStore saves and retrieves binary objects by key.
type ObjectStore interface {
	Save(ctx context.Context, ownerID, filename, contentType string, r io.Reader) (key string, size int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds "<owner hash>/<random>_<name>" for a new object.
func NewKey(ownerID, filename string) (string, error) {
	name, err := SanitizeFileName(filename)
	if err != nil {
		return "", err
	}
	return path.Join(HashOwner(ownerID), randomID()+"_"+name), nil
}

// CleanKey rejects keys that escape the store root.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || clean == "." || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// SanitizeFileName keeps the base name and replaces anything outside
// letters, digits, dot, dash and underscore.
func SanitizeFileName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := strings.Trim(sb.String(), ".")
	if out == "" || strings.Trim(out, "_") == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if len(out) > 120 {
		out = out[len(out)-120:]
	}
	return out, nil
}

// HashOwner hides owner ids from object paths.
func HashOwner(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:8])
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
