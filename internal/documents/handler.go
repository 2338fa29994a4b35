package documents

import (
	"github.com/gin-gonic/gin"

	"petition-backend/internal/shared/server/respond"
)

// URLResolver turns a storage key into a public URL.
type URLResolver func(key string) string

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	URL URLResolver
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, url URLResolver) *Handler {
	return &Handler{Svc: svc, URL: url}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cases/:caseId/documents", h.list)
}

func (h *Handler) list(c *gin.Context) {
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	docs, err := h.Svc.ListByCase(c.Request.Context(), caseID)
	if err != nil {
		respond.FromError(c, err, "failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		url := ""
		if h.URL != nil {
			url = h.URL(doc.StorageKey)
		}
		resp = append(resp, ToResponse(doc, url))
	}
	respond.OK(c, resp)
}
