package newbill

import (
	"strings"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"go.uber.org/zap"
)

// FileValidator accepts or rejects a selected proof on its extension
type FileValidator struct {
	input   port.FileInput
	message port.MessageDisplay
	logger  *zap.Logger
}

// NewFileValidator creates a validator. input and message may be nil.
func NewFileValidator(input port.FileInput, message port.MessageDisplay, logger *zap.Logger) *FileValidator {
	return &FileValidator{
		input:   input,
		message: message,
		logger:  logger,
	}
}

// Validate checks fileName. On rejection the selection is cleared, the
// error message is shown, and a *entity.ValidationError is returned.
func (v *FileValidator) Validate(fileName string) error {
	ext := Extension(fileName)
	if isAllowed(ext) {
		if v.message != nil {
			v.message.Hide()
		}
		return nil
	}

	if v.input != nil {
		v.input.Clear()
	}
	if v.message != nil {
		v.message.Show(entity.MsgInvalidExtension)
	}

	v.logger.Debug("Rejected proof file",
		zap.String("file_name", fileName),
		zap.String("extension", ext))

	return &entity.ValidationError{FileName: fileName, Extension: ext}
}

// Extension returns the lower-cased extension of a file name or URL,
// ignoring any trailing query string
func Extension(fileName string) string {
	name, _, _ := strings.Cut(fileName, "?")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// BaseName strips any directory part, with either separator, from a selected path
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func isAllowed(ext string) bool {
	for _, allowed := range entity.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
