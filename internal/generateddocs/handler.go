package generateddocs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petition-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// Limit guards generation; nil disables it.
	Limit gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, limit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Limit: limit}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	generate := []gin.HandlerFunc{h.generate}
	if h.Limit != nil {
		generate = append([]gin.HandlerFunc{h.Limit}, generate...)
	}
	rg.POST("/cases/:caseId/generated", generate...)
	rg.GET("/cases/:caseId/generated", h.list)
}

func (h *Handler) generate(c *gin.Context) {
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	out, err := h.Svc.Generate(c.Request.Context(), caseID, req.DocType, req.Parameters)
	if err != nil {
		respond.FromError(c, err, "failed to generate document")
		return
	}
	c.Set("documentId", out.Document.ID)
	respond.JSON(c, http.StatusCreated, toResponse(out.Document, out.Warnings))
}

func (h *Handler) list(c *gin.Context) {
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	docs, err := h.Svc.List(c.Request.Context(), caseID)
	if err != nil {
		respond.FromError(c, err, "failed to list generated documents")
		return
	}
	resp := make([]GeneratedResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc, nil))
	}
	respond.OK(c, resp)
}
