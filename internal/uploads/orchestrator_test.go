package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"petition-backend/internal/cases"
	"petition-backend/internal/companies"
	"petition-backend/internal/documents"
	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/metrics"
	"petition-backend/internal/shared/retry"
	"petition-backend/internal/shared/storage/object"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErrs   []error
	removeErr error
	puts      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, key string, r io.Reader, opts object.PutOptions) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if len(s.putErrs) > 0 {
		err := s.putErrs[0]
		s.putErrs = s.putErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	if _, exists := s.objects[key]; exists && !opts.Overwrite {
		return 0, apperror.Terminal(apperror.CodeConflict, "fake.put", errors.New("object exists"))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.objects[key] = data
	return int64(len(data)), nil
}

func (s *fakeStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, apperror.NotFound("fake.open", "object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

func (s *fakeStore) PublicURL(key string) string { return "http://files/" + key }

type failingDocs struct {
	documents.Repo
	createErr error
}

func (f failingDocs) Create(ctx context.Context, doc documents.SourceDocument) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Repo.Create(ctx, doc)
}

type fixture struct {
	orch      *Orchestrator
	store     *fakeStore
	docs      *documents.MemoryRepo
	companies *companies.MemoryRepo
	delays    *[]time.Duration
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	caseRepo := cases.NewMemoryRepo()
	require.NoError(t, caseRepo.Create(ctx, cases.Case{ID: "case-1", CompanyID: "co-1", Title: "Pregão 12/2024", Status: cases.StatusActive, CreatedAt: now}))
	companyRepo := companies.NewMemoryRepo()
	require.NoError(t, companyRepo.Create(ctx, companies.Company{ID: "co-1", Name: "Acme Ltda", TaxID: "12.345.678/0001-90", CreatedAt: now}))

	core, logs := observer.New(zap.InfoLevel)
	delays := []time.Duration{}
	store := newFakeStore()
	docs := documents.NewMemoryRepo()
	orch := &Orchestrator{
		Store:     store,
		Documents: docs,
		Cases:     caseRepo,
		Companies: companyRepo,
		Retry: &retry.Executor{
			Config: retry.DefaultConfig(),
			Sleep: func(_ context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			},
		},
		Logger: zap.New(core),
		Now:    func() time.Time { return now },
	}
	return fixture{orch: orch, store: store, docs: docs, companies: companyRepo, delays: &delays, logs: logs}
}

func pdfFile(name, body string) File {
	return File{Name: name, Size: int64(len(body)), ContentType: "application/pdf", Body: strings.NewReader(body)}
}

func stages(logs *observer.ObservedLogs) []string {
	var out []string
	for _, entry := range logs.FilterMessage("upload stage").All() {
		out = append(out, entry.ContextMap()["stage"].(string))
	}
	return out
}

func TestUploadSourceDocumentCommits(t *testing.T) {
	fx := newFixture(t)
	res, err := fx.orch.UploadSourceDocument(context.Background(), pdfFile("Edital Pregão.pdf", "%PDF-1.4"), "case-1", "edital")
	require.NoError(t, err)

	require.Regexp(t, `^case-1/\d+-[0-9a-z]{6}-Edital_Preg_o\.pdf$`, res.StorageKey)
	require.Equal(t, "http://files/"+res.StorageKey, res.PublicURL)
	require.Equal(t, []byte("%PDF-1.4"), fx.store.objects[res.StorageKey])

	doc, err := fx.docs.GetByID(context.Background(), res.DocumentID)
	require.NoError(t, err)
	require.Equal(t, "Edital Pregão.pdf", doc.FileName)
	require.Equal(t, documents.KindEdital, doc.Kind)
	require.EqualValues(t, 8, doc.SizeBytes)

	require.Equal(t, []string{stageValidating, stageUploading, stageStored, stageRecordingMetadata, stageCommitted}, stages(fx.logs))
}

func TestUploadSourceDocumentRejectsWithoutIO(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		kind    string
		message string
	}{
		{
			name:    "empty",
			file:    File{Name: "vazio.pdf", Size: 0, ContentType: "application/pdf", Body: strings.NewReader("")},
			kind:    "edital",
			message: "Arquivo está vazio",
		},
		{
			name:    "over limit",
			file:    File{Name: "grande.pdf", Size: 60 << 20, ContentType: "application/pdf", Body: strings.NewReader("x")},
			kind:    "edital",
			message: "Arquivo muito grande. Tamanho máximo: 50MB",
		},
		{
			name:    "mime",
			file:    File{Name: "foto.png", Size: 10, ContentType: "image/png", Body: strings.NewReader("x")},
			kind:    "edital",
			message: "Tipo de arquivo não permitido. Tipos aceitos: pdf, doc, docx",
		},
		{
			name:    "kind",
			file:    pdfFile("edital.pdf", "%PDF"),
			kind:    "contrato",
			message: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			_, err := fx.orch.UploadSourceDocument(context.Background(), tt.file, "case-1", tt.kind)
			require.Error(t, err)
			require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			if tt.message != "" {
				ae, ok := apperror.As(err)
				require.True(t, ok)
				require.Equal(t, tt.message, ae.Message)
			}
			require.Zero(t, fx.store.puts)
			require.Equal(t, []string{stageValidating, stageRejected}, stages(fx.logs))
		})
	}
}

func TestUploadSourceDocumentUnknownCase(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.orch.UploadSourceDocument(context.Background(), pdfFile("edital.pdf", "%PDF"), "missing", "edital")
	require.True(t, apperror.IsNotFound(err))
	require.Zero(t, fx.store.puts)
}

func TestUploadSourceDocumentRetriesTransientPut(t *testing.T) {
	fx := newFixture(t)
	fx.store.putErrs = []error{
		apperror.Transient(apperror.CodeUnavailable, "fake.put", errors.New("service unavailable")),
		errors.New("read: connection reset by peer"),
	}

	res, err := fx.orch.UploadSourceDocument(context.Background(), pdfFile("edital.pdf", "%PDF-1.7"), "case-1", "edital")
	require.NoError(t, err)
	require.Equal(t, 3, fx.store.puts)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *fx.delays)
	require.Equal(t, []byte("%PDF-1.7"), fx.store.objects[res.StorageKey])
}

func TestUploadSourceDocumentExhaustsRetries(t *testing.T) {
	fx := newFixture(t)
	unavailable := apperror.Transient(apperror.CodeUnavailable, "fake.put", errors.New("service unavailable"))
	fx.store.putErrs = []error{unavailable, unavailable, unavailable, unavailable}

	_, err := fx.orch.UploadSourceDocument(context.Background(), pdfFile("edital.pdf", "%PDF"), "case-1", "edital")
	require.Error(t, err)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	require.Equal(t, apperror.KindTransientIO, ae.Kind)
	require.Equal(t, 4, ae.Attempts)
	require.Equal(t, 4, fx.store.puts)
	require.Len(t, *fx.delays, 3)

	list, err := fx.docs.ListByCase(context.Background(), "case-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestUploadSourceDocumentTerminalPutNotRetried(t *testing.T) {
	fx := newFixture(t)
	fx.store.putErrs = []error{apperror.Terminal("403", "fake.put", errors.New("access denied"))}

	_, err := fx.orch.UploadSourceDocument(context.Background(), pdfFile("edital.pdf", "%PDF"), "case-1", "edital")
	require.Error(t, err)
	require.Equal(t, 1, fx.store.puts)
	require.Empty(t, *fx.delays)
}

func TestUploadSourceDocumentCompensatesFailedInsert(t *testing.T) {
	fx := newFixture(t)
	insertErr := apperror.Terminal(apperror.CodeConflict, "documents.create", errors.New("duplicate"))
	fx.orch.Documents = failingDocs{Repo: fx.docs, createErr: insertErr}

	_, err := fx.orch.UploadSourceDocument(context.Background(), pdfFile("edital.pdf", "%PDF"), "case-1", "edital")
	require.ErrorIs(t, err, insertErr)
	require.Empty(t, fx.store.objects)

	list, err := fx.docs.ListByCase(context.Background(), "case-1")
	require.NoError(t, err)
	require.Empty(t, list)
	require.Equal(t, []string{stageValidating, stageUploading, stageStored, stageRecordingMetadata, stageCompensating, stageFailed}, stages(fx.logs))
}

func TestUploadSourceDocumentCompensationFailureIsCounted(t *testing.T) {
	fx := newFixture(t)
	insertErr := errors.New("insert failed")
	fx.orch.Documents = failingDocs{Repo: fx.docs, createErr: insertErr}
	fx.store.removeErr = errors.New("permission denied")

	before := testutil.ToFloat64(metrics.CompensationFailures.WithLabelValues("documents.create"))
	_, err := fx.orch.UploadSourceDocument(context.Background(), pdfFile("edital.pdf", "%PDF"), "case-1", "edital")

	require.ErrorIs(t, err, insertErr)
	require.Len(t, fx.store.objects, 1)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.CompensationFailures.WithLabelValues("documents.create")))
	require.Equal(t, 1, fx.logs.FilterMessage("compensating remove failed, object orphaned").Len())
}

func TestUploadCompanyLogoOverwrites(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	logo := func(body string) File {
		return File{Name: "Logo.PNG", Size: int64(len(body)), ContentType: "image/png", Body: strings.NewReader(body)}
	}

	first, err := fx.orch.UploadCompanyLogo(ctx, logo("first"), "co-1")
	require.NoError(t, err)
	require.Equal(t, "logos/co-1.png", first.StorageKey)

	second, err := fx.orch.UploadCompanyLogo(ctx, logo("second"), "co-1")
	require.NoError(t, err)
	require.Equal(t, first.StorageKey, second.StorageKey)
	require.Equal(t, []byte("second"), fx.store.objects["logos/co-1.png"])

	company, err := fx.companies.GetByID(ctx, "co-1")
	require.NoError(t, err)
	require.Equal(t, "http://files/logos/co-1.png", company.LogoURL)
	require.Equal(t, "logos/co-1.png", company.LogoKey)
}

func TestUploadCompanyLogoValidation(t *testing.T) {
	fx := newFixture(t)
	big := File{Name: "logo.png", Size: 6 << 20, ContentType: "image/png", Body: strings.NewReader("x")}
	_, err := fx.orch.UploadCompanyLogo(context.Background(), big, "co-1")
	ae, ok := apperror.As(err)
	require.True(t, ok)
	require.Equal(t, "Arquivo muito grande. Tamanho máximo: 5MB", ae.Message)

	_, err = fx.orch.UploadCompanyLogo(context.Background(), File{Name: "logo.png", Size: 3, ContentType: "image/png", Body: strings.NewReader("png")}, "missing")
	require.True(t, apperror.IsNotFound(err))
	require.Zero(t, fx.store.puts)
}

func TestDeleteSourceDocument(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	res, err := fx.orch.UploadSourceDocument(ctx, pdfFile("edital.pdf", "%PDF"), "case-1", "outros")
	require.NoError(t, err)

	require.NoError(t, fx.orch.DeleteSourceDocument(ctx, res.DocumentID))
	require.Empty(t, fx.store.objects)
	_, err = fx.docs.GetByID(ctx, res.DocumentID)
	require.True(t, apperror.IsNotFound(err))

	err = fx.orch.DeleteSourceDocument(ctx, res.DocumentID)
	require.True(t, apperror.IsNotFound(err))
}

func TestDeleteSourceDocumentRemovesExtractedText(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	res, err := fx.orch.UploadSourceDocument(ctx, pdfFile("edital.pdf", "%PDF"), "case-1", "edital")
	require.NoError(t, err)
	_, err = fx.store.Put(ctx, res.StorageKey+documents.ExtractedTextSuffix, strings.NewReader("Objeto"), object.PutOptions{Overwrite: true})
	require.NoError(t, err)
	require.Len(t, fx.store.objects, 2)

	require.NoError(t, fx.orch.DeleteSourceDocument(ctx, res.DocumentID))
	require.Empty(t, fx.store.objects)
}

func TestDeleteSourceDocumentToleratesStorageFailure(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	res, err := fx.orch.UploadSourceDocument(ctx, pdfFile("edital.pdf", "%PDF"), "case-1", "edital")
	require.NoError(t, err)

	fx.store.removeErr = apperror.Terminal("403", "fake.remove", errors.New("access denied"))
	require.NoError(t, fx.orch.DeleteSourceDocument(ctx, res.DocumentID))

	_, err = fx.docs.GetByID(ctx, res.DocumentID)
	require.True(t, apperror.IsNotFound(err))
	require.Equal(t, 1, fx.logs.FilterMessage("storage remove failed, deleting record anyway").Len())
}
