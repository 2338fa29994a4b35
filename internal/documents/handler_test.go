package documents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestListByCaseNewestFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	now := time.Now().UTC()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, SourceDocument{ID: "old", CaseID: "case-1", FileName: "edital.pdf", Kind: KindEdital, StorageKey: "case-1/old.pdf", UploadedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, SourceDocument{ID: "new", CaseID: "case-1", FileName: "recurso.pdf", Kind: KindCompetitorAppeal, StorageKey: "case-1/new.pdf", UploadedAt: now}))
	require.NoError(t, repo.Create(ctx, SourceDocument{ID: "other", CaseID: "case-2", UploadedAt: now}))

	r := gin.New()
	NewHandler(&Service{Repo: repo}, func(key string) string { return "http://files/" + key }).RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cases/case-1/documents", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var docs []DocumentResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &docs))
	require.Len(t, docs, 2)
	require.Equal(t, "new", docs[0].DocumentID)
	require.Equal(t, "http://files/case-1/new.pdf", docs[0].URL)
	require.Equal(t, "recurso_concorrente", docs[0].Kind)
}

func TestParseKind(t *testing.T) {
	for _, raw := range []string{"edital", "recurso_concorrente", " outros "} {
		_, err := ParseKind(raw)
		require.NoError(t, err)
	}
	_, err := ParseKind("contrato")
	require.Error(t, err)
}
