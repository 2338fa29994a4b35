package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/storage/object"
)

// api is the subset of the S3 client used by Store.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client        api
	presigner     presignAPI
	bucket        string
	region        string
	prefix        string
	kmsKeyID      string
	publicBaseURL string
}

// New creates a new S3-backed object store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID, publicBaseURL string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	store := newWithClient(client, cfg.Region, bucket, prefix, kmsKeyID, publicBaseURL)
	store.presigner = s3.NewPresignClient(client)
	return store, nil
}

// PresignGet returns a time-limited GET URL for key.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.presigner == nil {
		return "", errors.New("s3 presigner not configured")
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return "", apperror.Wrap(err, apperror.KindValidation, "", "s3.presign")
	}
	out, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(applyPrefix(s.prefix, clean)),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", translate("s3.presign", err)
	}
	return out.URL, nil
}

func newWithClient(client api, region, bucket, prefix, kmsKeyID, publicBaseURL string) *Store {
	return &Store{
		client:        client,
		bucket:        bucket,
		region:        region,
		prefix:        normalizePrefix(prefix),
		kmsKeyID:      strings.TrimSpace(kmsKeyID),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// Put uploads r to key. Without Overwrite the write is conditional on the key
// being absent.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts object.PutOptions) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.KindValidation, "", "s3.put")
	}

	objectKey := applyPrefix(s.prefix, clean)
	counter := &countingReader{r: r}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   counter,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if !opts.Overwrite {
		input.IfNoneMatch = aws.String("*")
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, translate("s3.put", fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err))
	}
	return counter.n, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindValidation, "", "s3.open")
	}

	objectKey := applyPrefix(s.prefix, clean)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, translate("s3.open", fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err))
	}
	return out.Body, nil
}

// Remove deletes keys in one batch request.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]s3types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		clean, err := object.CleanKey(key)
		if err != nil {
			return apperror.Wrap(err, apperror.KindValidation, "", "s3.remove")
		}
		ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(applyPrefix(s.prefix, clean))})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return translate("s3.remove", fmt.Errorf("s3 delete objects bucket=%s: %w", s.bucket, err))
	}
	if out != nil && len(out.Errors) > 0 {
		first := out.Errors[0]
		return apperror.Terminal(apperror.CodeInternal, "s3.remove", fmt.Errorf("s3 delete key=%s code=%s: %s",
			aws.ToString(first.Key), aws.ToString(first.Code), aws.ToString(first.Message)))
	}
	return nil
}

// PublicURL returns the configured public URL for key, or the virtual-hosted
// S3 URL when none is configured.
func (s *Store) PublicURL(key string) string {
	clean, err := object.CleanKey(key)
	if err != nil {
		return ""
	}
	if s.publicBaseURL != "" {
		return object.JoinURL(s.publicBaseURL, clean)
	}
	host := fmt.Sprintf("https://%s.s3.amazonaws.com", s.bucket)
	if s.region != "" {
		host = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.bucket, s.region)
	}
	return object.JoinURL(host, applyPrefix(s.prefix, clean))
}

type statusCoder interface {
	HTTPStatusCode() int
}

func translate(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return apperror.Terminal(apperror.CodeNotFound, op, err)
		case "PreconditionFailed", "ConditionalRequestConflict":
			return apperror.Terminal(apperror.CodeConflict, op, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return apperror.Terminal(apperror.CodeForbidden, op, err)
		case "SlowDown", "ServiceUnavailable", "InternalError", "RequestTimeout":
			return apperror.Transient(apperror.CodeUnavailable, op, err)
		}
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		status := sc.HTTPStatusCode()
		switch {
		case status == http.StatusNotFound:
			return apperror.Terminal(apperror.CodeNotFound, op, err)
		case status == http.StatusPreconditionFailed || status == http.StatusConflict:
			return apperror.Terminal(apperror.CodeConflict, op, err)
		case status == http.StatusForbidden:
			return apperror.Terminal(apperror.CodeForbidden, op, err)
		case status == http.StatusRequestTimeout || status >= 500:
			return apperror.Transient(fmt.Sprintf("%d", status), op, err)
		case status >= 400:
			return apperror.Terminal(fmt.Sprintf("%d", status), op, err)
		}
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	// No response: the request never reached S3.
	return &apperror.Error{Op: op, Err: err}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var (
	_ object.ObjectStore = (*Store)(nil)
	_ object.Presigner   = (*Store)(nil)
)
