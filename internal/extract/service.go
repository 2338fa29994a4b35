package extract

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"petition-backend/internal/documents"
	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/retry"
	"petition-backend/internal/shared/storage/object"
)

const maxReadBytes = 50 << 20

// DocumentReader loads source document metadata.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (documents.SourceDocument, error)
}

// Service extracts text from stored source documents. Extracted text is
// cached next to the object as {key}.extracted.txt.
type Service struct {
	Documents DocumentReader
	Store     object.ObjectStore
	Retry     *retry.Executor
	Logger    *zap.Logger
}

// Text returns the plain text of a source document.
func (s *Service) Text(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Documents.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	log := s.logger().With(zap.String("document_id", doc.ID), zap.String("storage_key", doc.StorageKey))
	cacheKey := doc.ExtractedTextKey()

	if cached, err := s.read(ctx, cacheKey); err == nil {
		return string(cached), nil
	} else if !apperror.IsNotFound(err) {
		log.Warn("extracted text cache read failed", zap.Error(err))
	}

	data, err := retry.Do(ctx, s.Retry, "storage.get_source", func(ctx context.Context) ([]byte, error) {
		return s.read(ctx, doc.StorageKey)
	})
	if err != nil {
		return "", err
	}

	text, err := TextFromBytes(ctx, data, doc.ContentType)
	if err != nil {
		return "", err
	}

	if _, err := s.Store.Put(ctx, cacheKey, strings.NewReader(text), object.PutOptions{
		ContentType: "text/plain; charset=utf-8",
		Overwrite:   true,
	}); err != nil {
		log.Warn("extracted text cache write failed", zap.Error(err))
	}
	log.Info("text extracted", zap.Int("chars", len(text)))
	return text, nil
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxReadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxReadBytes {
		return nil, errors.New("stored object exceeds extraction limit")
	}
	return data, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
