package generateddocs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"petition-backend/internal/cases"
	"petition-backend/internal/companies"
	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/metrics"
	"petition-backend/internal/shared/retry"
	"petition-backend/internal/shared/storage/object"
	"petition-backend/internal/shared/util"
	"petition-backend/petition/model"
	petitionservice "petition-backend/petition/service"
)

// maxLogoBytes matches the logo upload limit.
const maxLogoBytes = 5 << 20

// CaseReader loads the case a petition is generated for.
type CaseReader interface {
	GetByID(ctx context.Context, id string) (cases.Case, error)
}

// CompanyReader loads the filing company.
type CompanyReader interface {
	GetByID(ctx context.Context, id string) (companies.Company, error)
}

// Service generates petitions and keeps them in object storage.
type Service struct {
	Repo      Repo
	Cases     CaseReader
	Companies CompanyReader
	Store     object.ObjectStore
	Retry     *retry.Executor
	Logger    *zap.Logger

	// Delay stands in for the drafting step; it is not cut short by ctx.
	Delay time.Duration
	Sleep func(time.Duration)
	Now   func() time.Time
}

// Generated is a stored petition plus any assembly warnings.
type Generated struct {
	Document GeneratedDocument
	Warnings []string
}

// Generate assembles a petition of docType for the case, stores the DOCX and
// records it. A failed record insert removes the stored object again.
func (s *Service) Generate(ctx context.Context, caseID, docType, params string) (Generated, error) {
	dt, err := model.ParseDocType(docType)
	if err != nil {
		metrics.GeneratedDocuments.WithLabelValues("unknown", "rejected").Inc()
		return Generated{}, apperror.Validation(fmt.Sprintf("Tipo de documento inválido: %s", strings.TrimSpace(docType)))
	}
	log := s.logger().With(zap.String("case_id", caseID), zap.String("doc_type", string(dt)))

	cs, err := s.Cases.GetByID(ctx, caseID)
	if err != nil {
		return Generated{}, s.failed(dt, err)
	}
	company, err := s.Companies.GetByID(ctx, cs.CompanyID)
	if err != nil {
		return Generated{}, s.failed(dt, err)
	}

	s.sleep(s.Delay)

	var warnings []string
	logo := s.fetchLogo(ctx, log, company)
	if company.LogoKey != "" && logo == nil {
		warnings = append(warnings, "logo unavailable, generated without it")
	}

	assembled, err := petitionservice.Assemble(petitionservice.Input{
		DocType:    dt,
		Company:    company.Letterhead(),
		Case:       cs.Proceeding(),
		Parameters: params,
		Logo:       logo,
		Date:       s.now(),
	})
	if err != nil {
		return Generated{}, s.failed(dt, err)
	}
	warnings = append(warnings, assembled.Warnings...)
	for _, w := range assembled.Warnings {
		log.Warn("assembly warning", zap.String("warning", w))
	}

	key := util.GenerateStorageKey(string(dt)+".docx", "generated/"+caseID)
	size, err := retry.Do(ctx, s.Retry, "storage.put_generated", func(ctx context.Context) (int64, error) {
		return s.Store.Put(ctx, key, bytes.NewReader(assembled.Bytes), object.PutOptions{ContentType: ContentType})
	})
	if err != nil {
		return Generated{}, s.failed(dt, err)
	}

	doc := GeneratedDocument{
		ID:         uuid.NewString(),
		CaseID:     caseID,
		DocType:    dt,
		StorageKey: key,
		StorageURL: s.Store.PublicURL(key),
		SizeBytes:  size,
		Parameters: Parameters{Text: params, DocType: string(dt)},
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		if rmErr := s.Store.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			metrics.CompensationFailures.WithLabelValues("generateddocs.create").Inc()
			log.Error("compensating remove failed, object orphaned", zap.String("storage_key", key), zap.Error(rmErr))
		}
		return Generated{}, s.failed(dt, err)
	}

	metrics.GeneratedDocuments.WithLabelValues(string(dt), "committed").Inc()
	log.Info("petition generated",
		zap.String("document_id", doc.ID),
		zap.String("storage_key", key),
		zap.Int64("size_bytes", size),
		zap.Int("warnings", len(warnings)),
	)
	return Generated{Document: doc, Warnings: warnings}, nil
}

// List returns a case's generated documents, newest first.
func (s *Service) List(ctx context.Context, caseID string) ([]GeneratedDocument, error) {
	if _, err := s.Cases.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.Repo.ListByCase(ctx, caseID)
}

// fetchLogo returns nil when the company has no logo or it cannot be read.
func (s *Service) fetchLogo(ctx context.Context, log *zap.Logger, company companies.Company) *model.Logo {
	if company.LogoKey == "" {
		return nil
	}
	data, err := retry.Do(ctx, s.Retry, "storage.get_logo", func(ctx context.Context) ([]byte, error) {
		rc, err := s.Store.Open(ctx, company.LogoKey)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(io.LimitReader(rc, maxLogoBytes+1))
	})
	if err != nil {
		log.Warn("logo fetch failed", zap.String("logo_key", company.LogoKey), zap.Error(err))
		return nil
	}
	if len(data) == 0 || len(data) > maxLogoBytes {
		log.Warn("logo size out of range", zap.String("logo_key", company.LogoKey), zap.Int("bytes", len(data)))
		return nil
	}
	return &model.Logo{Data: data, MIMEType: mimetype.Detect(data).String()}
}

func (s *Service) failed(dt model.DocType, err error) error {
	metrics.GeneratedDocuments.WithLabelValues(string(dt), "failed").Inc()
	return err
}

func (s *Service) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
