package newbill

import (
	"context"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/domain/entity"
	"go.uber.org/zap"
)

// Attachment holds the three fields produced by a successful upload
type Attachment struct {
	BillID   string
	FileURL  string
	FileName string
}

// Complete returns true when the upload phase produced a usable proof
func (a Attachment) Complete() bool {
	return a.BillID != "" && a.FileURL != "" && a.FileName != ""
}

// UploadOutcome is the settled result of one upload attempt
type UploadOutcome struct {
	FileName string
	Ref      *entity.UploadRef
	Err      error

	// Superseded is true when a newer selection started before this one settled;
	// its result was discarded.
	Superseded bool
}

// UploadCoordinator performs the asynchronous proof upload and records its reference
type UploadCoordinator struct {
	gateway port.StorageGateway
	logger  *zap.Logger

	mu         sync.Mutex
	generation uint64
	attachment Attachment
}

// NewUploadCoordinator creates an upload coordinator
func NewUploadCoordinator(gateway port.StorageGateway, logger *zap.Logger) *UploadCoordinator {
	return &UploadCoordinator{
		gateway: gateway,
		logger:  logger,
	}
}

// Start issues one Create call for file on its own goroutine. The returned
// channel receives exactly one outcome, then closes. A later Start supersedes
// this attempt: its result will not touch the recorded attachment.
func (u *UploadCoordinator) Start(ctx context.Context, sess port.SessionStore, file entity.AttachmentFile) <-chan UploadOutcome {
	out := make(chan UploadOutcome, 1)

	u.mu.Lock()
	u.generation++
	gen := u.generation
	u.mu.Unlock()

	fileName := BaseName(file.Name)

	user, err := session.CurrentUser(sess)
	if err != nil {
		u.fail(out, fileName, err)
		return out
	}
	if u.gateway == nil {
		u.fail(out, fileName, entity.ErrNoStore)
		return out
	}

	payload := &entity.UploadPayload{
		File:  entity.AttachmentFile{Name: fileName, Content: file.Content, MimeType: file.MimeType},
		Email: user.Email,
	}
	store := u.gateway.Bills()

	go func() {
		defer close(out)

		ref, err := store.Create(ctx, payload)

		u.mu.Lock()
		defer u.mu.Unlock()

		if gen != u.generation {
			u.logger.Debug("Discarding superseded upload", zap.String("file_name", fileName))
			out <- UploadOutcome{FileName: fileName, Ref: ref, Err: err, Superseded: true}
			return
		}

		if err != nil {
			uploadErr := &entity.UploadError{FileName: fileName, Err: err}
			u.logger.Error("Failed to upload proof file",
				zap.String("file_name", fileName),
				zap.Error(err))
			out <- UploadOutcome{FileName: fileName, Err: uploadErr}
			return
		}

		u.attachment = Attachment{
			BillID:   ref.Key,
			FileURL:  ref.FileURL,
			FileName: fileName,
		}
		u.logger.Info("Proof file uploaded",
			zap.String("bill_id", ref.Key),
			zap.String("file_name", fileName))
		out <- UploadOutcome{FileName: fileName, Ref: ref}
	}()

	return out
}

// Attachment returns the fields recorded by the latest successful upload
func (u *UploadCoordinator) Attachment() Attachment {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.attachment
}

func (u *UploadCoordinator) fail(out chan<- UploadOutcome, fileName string, cause error) {
	err := &entity.UploadError{FileName: fileName, Err: cause}
	u.logger.Error("Failed to upload proof file",
		zap.String("file_name", fileName),
		zap.Error(cause))
	out <- UploadOutcome{FileName: fileName, Err: err}
	close(out)
}
