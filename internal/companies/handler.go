package companies

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

// RegisterRoutes attaches company routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/companies", h.create)
	rg.GET("/companies/:companyId", h.get)
	rg.PUT("/companies/:companyId", h.update)
}

func (h *Handler) create(c *gin.Context) {
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	company, err := h.Svc.Create(c.Request.Context(), req.settings())
	if err != nil {
		respond.FromError(c, err, "failed to create company")
		return
	}
	c.Set("companyId", company.ID)
	respond.JSON(c, http.StatusCreated, toResponse(company))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("companyId")
	c.Set("companyId", id)
	company, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.FromError(c, err, "failed to fetch company")
		return
	}
	respond.OK(c, toResponse(company))
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("companyId")
	c.Set("companyId", id)
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	company, err := h.Svc.Update(c.Request.Context(), id, req.settings())
	if err != nil {
		respond.FromError(c, err, "failed to update company")
		return
	}
	respond.OK(c, toResponse(company))
}
