package uploads

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/server/respond"
	"petition-backend/internal/shared/storage/object"
)

const (
	// Large enough that oversize files reach validation and get its message.
	defaultMaxBodyBytes = 100 << 20
	defaultPresignTTL   = 15 * time.Minute
	sniffLen            = 3072
)

// Handler exposes upload, delete and download routes.
type Handler struct {
	Uploads      *Orchestrator
	Store        object.ObjectStore
	MaxBodyBytes int64
	PresignTTL   time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(uploads *Orchestrator, store object.ObjectStore) *Handler {
	return &Handler{Uploads: uploads, Store: store}
}

type uploadResponse struct {
	DocumentID string `json:"documentId"`
	StorageKey string `json:"storageKey"`
	URL        string `json:"url"`
}

type logoResponse struct {
	LogoURL    string `json:"logoUrl"`
	StorageKey string `json:"storageKey"`
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cases/:caseId/documents", h.uploadDocument)
	rg.DELETE("/documents/:documentId", h.deleteDocument)
	rg.POST("/companies/:companyId/logo", h.uploadLogo)
	rg.GET("/files/*key", h.download)
}

func (h *Handler) uploadDocument(c *gin.Context) {
	caseID := c.Param("caseId")
	c.Set("caseId", caseID)

	f, closeFn, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeFn()

	res, err := h.Uploads.UploadSourceDocument(c.Request.Context(), f, caseID, c.PostForm("kind"))
	if err != nil {
		respond.FromError(c, err, "failed to upload document")
		return
	}
	c.Set("documentId", res.DocumentID)
	respond.JSON(c, http.StatusCreated, uploadResponse{
		DocumentID: res.DocumentID,
		StorageKey: res.StorageKey,
		URL:        res.PublicURL,
	})
}

func (h *Handler) deleteDocument(c *gin.Context) {
	id := c.Param("documentId")
	c.Set("documentId", id)

	if err := h.Uploads.DeleteSourceDocument(c.Request.Context(), id); err != nil {
		respond.FromError(c, err, "failed to delete document")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadLogo(c *gin.Context) {
	companyID := c.Param("companyId")
	c.Set("companyId", companyID)

	f, closeFn, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeFn()

	res, err := h.Uploads.UploadCompanyLogo(c.Request.Context(), f, companyID)
	if err != nil {
		respond.FromError(c, err, "failed to upload logo")
		return
	}
	respond.OK(c, logoResponse{LogoURL: res.PublicURL, StorageKey: res.StorageKey})
}

func (h *Handler) download(c *gin.Context) {
	key, err := object.CleanKey(c.Param("key"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file key", nil)
		return
	}

	if p, ok := h.Store.(object.Presigner); ok {
		url, err := p.PresignGet(c.Request.Context(), key, h.presignTTL())
		if err != nil {
			respond.FromError(c, err, "failed to sign download")
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, url)
		return
	}

	rc, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		respond.FromError(c, err, "failed to open file")
		return
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		respond.FromError(c, err, "failed to read file")
		return
	}
	head = head[:n]

	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), rc), nil)
}

// formFile reads the multipart "file" field. The declared content type is
// replaced by a sniffed one when the client sent none or a generic one.
func (h *Handler) formFile(c *gin.Context) (File, func(), bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes())

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "request body too large", nil)
			return File{}, nil, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "Nenhum arquivo enviado", nil)
		return File{}, nil, false
	}
	body, err := header.Open()
	if err != nil {
		respond.FromError(c, apperror.Wrap(err, apperror.KindTerminalIO, "", "upload.open"), "failed to read upload")
		return File{}, nil, false
	}

	contentType, err := declaredOrSniffed(header, body)
	if err != nil {
		_ = body.Close()
		respond.FromError(c, apperror.Wrap(err, apperror.KindTerminalIO, "", "upload.sniff"), "failed to read upload")
		return File{}, nil, false
	}

	return File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
		Body:        body,
	}, func() { _ = body.Close() }, true
}

func declaredOrSniffed(header *multipart.FileHeader, body multipart.File) (string, error) {
	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" && !strings.HasPrefix(declared, "application/octet-stream") {
		return declared, nil
	}
	mt, err := mimetype.DetectReader(body)
	if err != nil {
		return "", err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

func (h *Handler) maxBodyBytes() int64 {
	if h.MaxBodyBytes > 0 {
		return h.MaxBodyBytes
	}
	return defaultMaxBodyBytes
}

func (h *Handler) presignTTL() time.Duration {
	if h.PresignTTL > 0 {
		return h.PresignTTL
	}
	return defaultPresignTTL
}
