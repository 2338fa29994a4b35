package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/config"
	"petition-backend/internal/shared/storage/object"
)

// Store implements ObjectStore on a MinIO (or any S3-compatible) endpoint.
type Store struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// New connects to MinIO and ensures the bucket exists.
func New(ctx context.Context, cfg config.MinIOConfig, publicBaseURL string) (*Store, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &Store{
		client:        mc,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := mc.BucketExists(ctx, s.bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Put uploads r to key. Without Overwrite an existing object yields a 409.
// MinIO has no conditional put here, so existence is checked first.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts object.PutOptions) (int64, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.KindValidation, "", "minio.put")
	}
	if !opts.Overwrite {
		_, statErr := s.client.StatObject(ctx, s.bucket, clean, minio.StatObjectOptions{})
		if statErr == nil {
			return 0, apperror.Terminal(apperror.CodeConflict, "minio.put", fmt.Errorf("object %s already exists", clean))
		}
		if translated := translate("minio.put", statErr); !apperror.IsNotFound(translated) {
			return 0, translated
		}
	}

	info, err := s.client.PutObject(ctx, s.bucket, clean, r, -1, minio.PutObjectOptions{ContentType: opts.ContentType})
	if err != nil {
		return 0, translate("minio.put", err)
	}
	return info.Size, nil
}

// Open returns a reader for key after confirming the object exists.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindValidation, "", "minio.open")
	}
	obj, err := s.client.GetObject(ctx, s.bucket, clean, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate("minio.open", err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, translate("minio.open", err)
	}
	return obj, nil
}

// Remove deletes keys one by one. Missing objects are not an error.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		clean, err := object.CleanKey(key)
		if err != nil {
			errs = append(errs, apperror.Wrap(err, apperror.KindValidation, "", "minio.remove"))
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, clean, minio.RemoveObjectOptions{}); err != nil {
			if translated := translate("minio.remove", err); !apperror.IsNotFound(translated) {
				errs = append(errs, translated)
			}
		}
	}
	return errors.Join(errs...)
}

// PublicURL returns a path-style URL on the MinIO endpoint, or one on
// publicBaseURL when configured.
func (s *Store) PublicURL(key string) string {
	clean, err := object.CleanKey(key)
	if err != nil {
		return ""
	}
	if s.publicBaseURL != "" {
		return object.JoinURL(s.publicBaseURL, clean)
	}
	endpoint := s.client.EndpointURL()
	return object.JoinURL(endpoint.String(), s.bucket+"/"+clean)
}

func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return apperror.Terminal(apperror.CodeNotFound, op, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return apperror.Terminal(apperror.CodeForbidden, op, err)
	case "SlowDown", "XMinioServerNotInitialized", "ServiceUnavailable":
		return apperror.Transient(apperror.CodeUnavailable, op, err)
	}
	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		return apperror.Terminal(apperror.CodeNotFound, op, err)
	case status == http.StatusForbidden:
		return apperror.Terminal(apperror.CodeForbidden, op, err)
	case status == http.StatusRequestTimeout || status >= 500:
		return apperror.Transient(fmt.Sprintf("%d", status), op, err)
	case status >= 400:
		return apperror.Terminal(fmt.Sprintf("%d", status), op, err)
	}
	return &apperror.Error{Op: op, Err: err}
}

var _ object.ObjectStore = (*Store)(nil)
