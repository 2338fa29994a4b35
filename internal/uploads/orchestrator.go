package uploads

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"petition-backend/internal/cases"
	"petition-backend/internal/companies"
	"petition-backend/internal/documents"
	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/metrics"
	"petition-backend/internal/shared/retry"
	"petition-backend/internal/shared/storage/object"
	"petition-backend/internal/shared/util"
	"petition-backend/internal/shared/validation"
)

// Lifecycle stages, logged as the "stage" field.
const (
	stageValidating        = "validating"
	stageRejected          = "rejected"
	stageUploading         = "uploading"
	stageStored            = "stored"
	stageRecordingMetadata = "recording_metadata"
	stageCompensating      = "compensating"
	stageFailed            = "failed"
	stageCommitted         = "committed"
)

const (
	targetSourceDocument = "source_document"
	targetCompanyLogo    = "company_logo"
)

// File is an upload candidate. Body is rewound before every storage attempt.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.ReadSeeker
}

// Result identifies a committed source document.
type Result struct {
	DocumentID string
	StorageKey string
	PublicURL  string
}

// LogoResult identifies a stored company logo.
type LogoResult struct {
	PublicURL  string
	StorageKey string
}

// CaseReader checks that an upload targets an existing case.
type CaseReader interface {
	GetByID(ctx context.Context, id string) (cases.Case, error)
}

// CompanyStore reads companies and records their logo.
type CompanyStore interface {
	GetByID(ctx context.Context, id string) (companies.Company, error)
	UpdateLogo(ctx context.Context, id, logoURL, logoKey string) error
}

// Orchestrator pairs object storage writes with metadata records.
type Orchestrator struct {
	Store     object.ObjectStore
	Documents documents.Repo
	Cases     CaseReader
	Companies CompanyStore
	Retry     *retry.Executor
	Logger    *zap.Logger
	Now       func() time.Time
}

// UploadSourceDocument validates f, stores it under a fresh key below caseID
// and records it. A failed metadata insert removes the stored object again.
func (o *Orchestrator) UploadSourceDocument(ctx context.Context, f File, caseID, kind string) (Result, error) {
	log := o.logger().With(
		zap.String("target", targetSourceDocument),
		zap.String("case_id", caseID),
		zap.String("file_name", f.Name),
	)
	o.stage(log, stageValidating)

	if res := validation.Validate(validation.File{Name: f.Name, Size: f.Size, ContentType: f.ContentType}, validation.DefaultOptions()); !res.Valid {
		return Result{}, o.reject(log, targetSourceDocument, apperror.Validation(res.Error))
	}
	docKind, err := documents.ParseKind(kind)
	if err != nil {
		return Result{}, o.reject(log, targetSourceDocument, apperror.Validation(err.Error()))
	}
	if o.Cases != nil {
		if _, err := o.Cases.GetByID(ctx, caseID); err != nil {
			return Result{}, o.fail(log, targetSourceDocument, err)
		}
	}

	key := util.GenerateStorageKey(f.Name, caseID)
	log = log.With(zap.String("storage_key", key))
	o.stage(log, stageUploading)

	size, err := o.put(ctx, "storage.put", key, f, false)
	if err != nil {
		return Result{}, o.fail(log, targetSourceDocument, err)
	}
	o.stage(log, stageStored, zap.Int64("size_bytes", size))

	doc := documents.SourceDocument{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		FileName:    f.Name,
		Kind:        docKind,
		StorageKey:  key,
		ContentType: validation.MediaType(f.ContentType),
		SizeBytes:   size,
		UploadedAt:  o.now(),
	}
	o.stage(log, stageRecordingMetadata, zap.String("document_id", doc.ID))
	if err := o.Documents.Create(ctx, doc); err != nil {
		o.compensate(ctx, log, "documents.create", key)
		return Result{}, o.fail(log, targetSourceDocument, err)
	}

	o.stage(log, stageCommitted, zap.String("document_id", doc.ID))
	metrics.UploadsTotal.WithLabelValues(targetSourceDocument, stageCommitted).Inc()
	return Result{DocumentID: doc.ID, StorageKey: key, PublicURL: o.Store.PublicURL(key)}, nil
}

// UploadCompanyLogo stores the logo at logos/{companyID}.{ext}, replacing any
// previous one, and points the company at it.
func (o *Orchestrator) UploadCompanyLogo(ctx context.Context, f File, companyID string) (LogoResult, error) {
	log := o.logger().With(
		zap.String("target", targetCompanyLogo),
		zap.String("company_id", companyID),
		zap.String("file_name", f.Name),
	)
	o.stage(log, stageValidating)

	if res := validation.Validate(validation.File{Name: f.Name, Size: f.Size, ContentType: f.ContentType}, validation.LogoOptions()); !res.Valid {
		return LogoResult{}, o.reject(log, targetCompanyLogo, apperror.Validation(res.Error))
	}
	if _, err := o.Companies.GetByID(ctx, companyID); err != nil {
		return LogoResult{}, o.fail(log, targetCompanyLogo, err)
	}

	key := fmt.Sprintf("logos/%s.%s", companyID, validation.Extension(f.Name))
	log = log.With(zap.String("storage_key", key))
	o.stage(log, stageUploading)

	size, err := o.put(ctx, "storage.put_logo", key, f, true)
	if err != nil {
		return LogoResult{}, o.fail(log, targetCompanyLogo, err)
	}
	o.stage(log, stageStored, zap.Int64("size_bytes", size))

	url := o.Store.PublicURL(key)
	o.stage(log, stageRecordingMetadata)
	if err := o.Companies.UpdateLogo(ctx, companyID, url, key); err != nil {
		return LogoResult{}, o.fail(log, targetCompanyLogo, err)
	}

	o.stage(log, stageCommitted)
	metrics.UploadsTotal.WithLabelValues(targetCompanyLogo, stageCommitted).Inc()
	return LogoResult{PublicURL: url, StorageKey: key}, nil
}

// DeleteSourceDocument removes the stored object with its cached extracted
// text and then the record. A storage failure is logged and does not block the
// metadata delete.
func (o *Orchestrator) DeleteSourceDocument(ctx context.Context, documentID string) error {
	doc, err := o.Documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	log := o.logger().With(zap.String("document_id", doc.ID), zap.String("storage_key", doc.StorageKey))

	if err := o.Retry.Run(ctx, "storage.remove", func(ctx context.Context) error {
		return o.Store.Remove(ctx, doc.StorageKey, doc.ExtractedTextKey())
	}); err != nil {
		log.Warn("storage remove failed, deleting record anyway", zap.Error(err))
	}
	if err := o.Documents.Delete(ctx, doc.ID); err != nil {
		return err
	}
	log.Info("source document deleted")
	return nil
}

func (o *Orchestrator) put(ctx context.Context, op, key string, f File, overwrite bool) (int64, error) {
	opts := object.PutOptions{ContentType: validation.MediaType(f.ContentType), Overwrite: overwrite}
	return retry.Do(ctx, o.Retry, op, func(ctx context.Context) (int64, error) {
		if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
			return 0, apperror.Wrap(err, apperror.KindTerminalIO, "", "upload.rewind")
		}
		return o.Store.Put(ctx, key, f.Body, opts)
	})
}

// compensate removes an object whose metadata could not be recorded. It runs
// detached from ctx so a cancelled request still cleans up.
func (o *Orchestrator) compensate(ctx context.Context, log *zap.Logger, op, key string) {
	o.stage(log, stageCompensating)
	if err := o.Store.Remove(context.WithoutCancel(ctx), key); err != nil {
		metrics.CompensationFailures.WithLabelValues(op).Inc()
		log.Error("compensating remove failed, object orphaned", zap.String("operation", op), zap.Error(err))
	}
}

func (o *Orchestrator) reject(log *zap.Logger, target string, err error) error {
	o.stage(log, stageRejected, zap.Error(err))
	metrics.UploadsTotal.WithLabelValues(target, stageRejected).Inc()
	return err
}

func (o *Orchestrator) fail(log *zap.Logger, target string, err error) error {
	o.stage(log, stageFailed, zap.Error(err))
	metrics.UploadsTotal.WithLabelValues(target, stageFailed).Inc()
	return err
}

func (o *Orchestrator) stage(log *zap.Logger, stage string, fields ...zap.Field) {
	log.Info("upload stage", append([]zap.Field{zap.String("stage", stage)}, fields...)...)
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}
