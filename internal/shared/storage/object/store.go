package object

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
)

// PutOptions controls a single write.
type PutOptions struct {
	ContentType string
	// Overwrite replaces an existing object. When false an existing key fails
	// with a conflict.
	Overwrite bool
}

// ObjectStore defines the contract for saving and retrieving binary objects.
// Implementations translate backend failures into apperror values so callers
// can decide whether to retry.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, keys ...string) error
	PublicURL(key string) string
}

// Presigner is implemented by stores that can hand out temporary direct
// download links instead of streaming through the API.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ErrInvalidKey is returned for empty keys or keys escaping the namespace.
var ErrInvalidKey = errors.New("invalid storage key")

// CleanKey normalizes key to a relative slash-separated path.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return "", ErrInvalidKey
	}
	clean := path.Clean("/" + key)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	return clean, nil
}

// JoinURL appends an escaped key to base.
func JoinURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
