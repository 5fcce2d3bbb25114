// Package gateway exposes the bill repositories as the client-facing store.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/garyjia/billed/internal/application/newbill"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FilesRoute is the URL prefix proof files are served under
const FilesRoute = "/files/"

// Deps are the collaborators of a Local gateway
type Deps struct {
	Bills       port.BillRepository
	Attachments port.AttachmentRepository
	Tx          port.TransactionManager
	Files       port.FileStorage
}

// Local implements port.StorageGateway and port.BillStore over the
// repositories and local file storage
type Local struct {
	deps    Deps
	baseURL string
	newID   func() string
	logger  *zap.Logger
}

// NewLocal creates a gateway. publicBaseURL prefixes the returned file URLs.
func NewLocal(deps Deps, publicBaseURL string, logger *zap.Logger) *Local {
	return &Local{
		deps:    deps,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// Bills implements port.StorageGateway
func (g *Local) Bills() port.BillStore {
	return g
}

// List returns every bill in insertion order
func (g *Local) List(ctx context.Context) ([]entity.Bill, error) {
	records, err := g.deps.Bills.List(ctx)
	if err != nil {
		return nil, err
	}

	bills := make([]entity.Bill, 0, len(records))
	for _, r := range records {
		bills = append(bills, *r)
	}
	return bills, nil
}

// Create stores the proof file and the draft bill it belongs to.
// The file is removed again when the draft cannot be recorded.
func (g *Local) Create(ctx context.Context, payload *entity.UploadPayload) (*entity.UploadRef, error) {
	if payload == nil || payload.File.Name == "" {
		return nil, fmt.Errorf("upload payload has no file")
	}

	id := g.newID()
	fileName := newbill.BaseName(payload.File.Name)
	relPath := storage.ProofPath(id, fileName)
	fileURL := g.FileURL(relPath)

	if err := g.deps.Files.Save(ctx, relPath, payload.File.Content); err != nil {
		return nil, fmt.Errorf("failed to store proof file: %w", err)
	}

	mimeType := payload.File.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(payload.File.Content)
	}

	err := g.deps.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		draft := &entity.Bill{
			ID:       id,
			Email:    payload.Email,
			Pct:      entity.DefaultPct,
			FileURL:  entity.StringPtr(fileURL),
			FileName: entity.StringPtr(fileName),
			Status:   entity.StatusPending,
		}
		if err := g.deps.Bills.Create(ctx, draft); err != nil {
			return err
		}
		return g.deps.Attachments.Create(ctx, &entity.StoredAttachment{
			BillID:      id,
			StoragePath: relPath,
			MimeType:    mimeType,
			Size:        int64(len(payload.File.Content)),
		})
	})
	if err != nil {
		if delErr := g.deps.Files.Delete(ctx, relPath); delErr != nil {
			g.logger.Warn("Failed to remove orphaned proof file",
				zap.String("path", relPath),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create draft bill: %w", err)
	}

	g.logger.Info("Draft bill created",
		zap.String("bill_id", id),
		zap.String("file_name", fileName))
	return &entity.UploadRef{Key: id, FileURL: fileURL}, nil
}

// Update writes the submitted fields onto the existing draft
func (g *Local) Update(ctx context.Context, bill *entity.Bill) error {
	if bill == nil || bill.ID == "" {
		return entity.ErrBillNotFound
	}
	if err := bill.Validate(); err != nil {
		g.logger.Warn("Rejected bill update", zap.String("bill_id", bill.ID), zap.Error(err))
		return err
	}
	return g.deps.Bills.Update(ctx, bill)
}

// Proof returns a bill's stored attachment and its content
func (g *Local) Proof(ctx context.Context, billID string) (*entity.StoredAttachment, []byte, error) {
	attachment, err := g.deps.Attachments.GetByBillID(ctx, billID)
	if err != nil {
		return nil, nil, err
	}

	content, err := g.deps.Files.Read(ctx, attachment.StoragePath)
	if err != nil {
		return attachment, nil, err
	}
	return attachment, content, nil
}

// FileURL returns the public URL of a stored file
func (g *Local) FileURL(relPath string) string {
	return g.baseURL + FilesRoute + relPath
}

var (
	_ port.StorageGateway = (*Local)(nil)
	_ port.BillStore      = (*Local)(nil)
)
