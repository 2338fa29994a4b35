package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir       string
	publicBaseURL string
}

// New creates a new local object store rooted at baseDir. Public URLs are
// built from publicBaseURL, normally the API's file download route.
func New(baseDir, publicBaseURL string) *Store {
	return &Store{baseDir: baseDir, publicBaseURL: publicBaseURL}
}

// Put writes r to key. Without Overwrite an existing file yields a 409.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts object.PutOptions) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.KindValidation, "", "local.put")
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, translate("local.put", fmt.Errorf("mkdir: %w", err))
	}

	tmpPath := fullPath + ".tmp-" + randomID()
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, translate("local.put", fmt.Errorf("open file: %w", err))
	}
	written, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, translate("local.put", fmt.Errorf("write body: %w", err))
	}

	if opts.Overwrite {
		err = os.Rename(tmpPath, fullPath)
	} else {
		// Link fails when the destination exists, unlike Rename.
		err = os.Link(tmpPath, fullPath)
		_ = os.Remove(tmpPath)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, translate("local.put", err)
	}
	return written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindValidation, "", "local.open")
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, translate("local.open", err)
	}
	return f, nil
}

// Remove deletes keys. Missing files are ignored.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var errs []error
	for _, key := range keys {
		fullPath, err := s.resolve(key)
		if err != nil {
			errs = append(errs, apperror.Wrap(err, apperror.KindValidation, "", "local.remove"))
			continue
		}
		if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, translate("local.remove", err))
		}
	}
	return errors.Join(errs...)
}

// PublicURL returns the download URL for key.
func (s *Store) PublicURL(key string) string {
	clean, err := object.CleanKey(key)
	if err != nil {
		return ""
	}
	return object.JoinURL(s.publicBaseURL, clean)
}

func (s *Store) resolve(key string) (string, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return apperror.Terminal(apperror.CodeNotFound, op, err)
	case errors.Is(err, fs.ErrExist):
		return apperror.Terminal(apperror.CodeConflict, op, err)
	case errors.Is(err, fs.ErrPermission):
		return apperror.Terminal(apperror.CodeForbidden, op, err)
	default:
		return apperror.Transient(apperror.CodeInternal, op, err)
	}
}

func randomID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

var _ object.ObjectStore = (*Store)(nil)
