package cases

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petition-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches case routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/companies/:companyId/cases", h.create)
	rg.GET("/companies/:companyId/cases", h.list)
	rg.GET("/cases/:caseId", h.get)
	rg.PATCH("/cases/:caseId/status", h.updateStatus)
}

func (h *Handler) create(c *gin.Context) {
	companyID := c.Param("companyId")
	c.Set("companyId", companyID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), companyID, NewCase{
		Title:         req.Title,
		ProcessNumber: req.ProcessNumber,
		Agency:        req.Agency,
		Description:   req.Description,
	})
	if err != nil {
		respond.FromError(c, err, "failed to create case")
		return
	}
	c.Set("caseId", created.ID)
	respond.JSON(c, http.StatusCreated, toResponse(created))
}

func (h *Handler) list(c *gin.Context) {
	companyID := c.Param("companyId")
	c.Set("companyId", companyID)

	items, err := h.Svc.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		respond.FromError(c, err, "failed to list cases")
		return
	}
	resp := make([]CaseResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("caseId")
	c.Set("caseId", id)

	found, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.FromError(c, err, "failed to fetch case")
		return
	}
	respond.OK(c, toResponse(found))
}

func (h *Handler) updateStatus(c *gin.Context) {
	id := c.Param("caseId")
	c.Set("caseId", id)

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	updated, err := h.Svc.UpdateStatus(c.Request.Context(), id, Status(req.Status))
	if err != nil {
		respond.FromError(c, err, "failed to update case status")
		return
	}
	respond.OK(c, toResponse(updated))
}
