package http

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/bills"
	"github.com/garyjia/billed/internal/application/newbill"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/preview"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// ProofSource returns a bill's stored proof
type ProofSource interface {
	Proof(ctx context.Context, billID string) (*entity.StoredAttachment, []byte, error)
}

// PreviewRenderer turns proof content into a PNG
type PreviewRenderer interface {
	Render(content []byte) ([]byte, error)
}

// SpreadsheetWriter writes listing rows as a workbook
type SpreadsheetWriter interface {
	Write(w io.Writer, rows []bills.BillView) error
}

// HealthFunc reports component health, keyed by component name
type HealthFunc func(ctx context.Context) map[string]string

// HandlerDeps are the collaborators of Handlers
type HandlerDeps struct {
	Store     port.BillStore
	Proofs    ProofSource
	Files     port.FileStorage
	Retriever *bills.Retriever
	Renderer  PreviewRenderer
	Exporter  SpreadsheetWriter
	Health    HealthFunc
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   HandlerDeps
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps HandlerDeps, logger *zap.Logger) *Handlers {
	return &Handlers{deps: deps, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	status := http.StatusOK
	if h.deps.Health != nil {
		response.Components = h.deps.Health(c.Request.Context())
		for _, state := range response.Components {
			if state != "healthy" {
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// ListBills handles GET /bills
func (h *Handlers) ListBills(c *gin.Context) {
	list, err := h.deps.Store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list bills", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve bills",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    list,
	})
}

// CreateBill handles POST /bills with a multipart "file" and "email"
func (h *Handlers) CreateBill(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, Response{
				Success: false,
				Error:   "file too large",
			})
			return
		}
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing file",
		})
		return
	}

	fileName := newbill.BaseName(header.Filename)
	if !slices.Contains(entity.AllowedExtensions, newbill.Extension(fileName)) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   entity.MsgInvalidExtension,
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "unreadable file",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "unreadable file",
		})
		return
	}

	ref, err := h.deps.Store.Create(c.Request.Context(), &entity.UploadPayload{
		File: entity.AttachmentFile{
			Name:     fileName,
			Content:  content,
			MimeType: header.Header.Get("Content-Type"),
		},
		Email: c.PostForm("email"),
	})
	if err != nil {
		h.logger.Error("Failed to create bill", zap.String("file_name", fileName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to store proof",
		})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    ref,
	})
}

// UpdateBill handles PATCH /bills/:id
func (h *Handlers) UpdateBill(c *gin.Context) {
	var bill entity.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid bill",
		})
		return
	}
	bill.ID = c.Param("id")

	if err := h.deps.Store.Update(c.Request.Context(), &bill); err != nil {
		var invalid *entity.InvalidBillError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   invalid.Error(),
			})
			return
		}
		if errors.Is(err, entity.ErrBillNotFound) {
			c.JSON(http.StatusNotFound, Response{
				Success: false,
				Error:   "bill not found",
			})
			return
		}
		h.logger.Error("Failed to update bill", zap.String("bill_id", bill.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to update bill",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    bill,
	})
}

// ExportBills handles GET /bills/export, the listing as an .xlsx workbook
func (h *Handlers) ExportBills(c *gin.Context) {
	views, err := h.deps.Retriever.GetBills(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="notes-de-frais.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := h.deps.Exporter.Write(c.Writer, bills.SortNewestFirst(views)); err != nil {
		h.logger.Error("Failed to export bills", zap.Error(err))
	}
}

// PreviewBill handles GET /bills/:id/preview.
// A proof that cannot be rendered answers 422 with the broken flag set.
func (h *Handlers) PreviewBill(c *gin.Context) {
	id := c.Param("id")

	_, content, err := h.deps.Proofs.Proof(c.Request.Context(), id)
	if errors.Is(err, entity.ErrBillNotFound) {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "bill not found",
		})
		return
	}

	var png []byte
	if err == nil {
		png, err = h.deps.Renderer.Render(content)
	}
	if err != nil {
		h.logger.Warn("Proof preview is broken", zap.String("bill_id", id), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    gin.H{"broken": true},
			Error:   preview.ErrBroken.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// ServeFile handles GET /files/*path
func (h *Handlers) ServeFile(c *gin.Context) {
	rel := strings.TrimPrefix(path.Clean(c.Param("path")), "/")
	ctx := c.Request.Context()

	if rel == "" || !h.deps.Files.Exists(ctx, rel) {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "file not found",
		})
		return
	}

	content, err := h.deps.Files.Read(ctx, rel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to read file",
		})
		return
	}

	contentType := mime.TypeByExtension(path.Ext(rel))
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	c.Data(http.StatusOK, contentType, content)
}
