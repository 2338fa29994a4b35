package extract

import (
	"github.com/gin-gonic/gin"

	"petition-backend/internal/shared/server/respond"
)

// Handler exposes text extraction.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type textResponse struct {
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
}

// RegisterRoutes attaches extraction routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:documentId/text", h.text)
}

func (h *Handler) text(c *gin.Context) {
	id := c.Param("documentId")
	c.Set("documentId", id)

	text, err := h.Svc.Text(c.Request.Context(), id)
	if err != nil {
		respond.FromError(c, err, "failed to extract text")
		return
	}
	respond.OK(c, textResponse{DocumentID: id, Text: text})
}
