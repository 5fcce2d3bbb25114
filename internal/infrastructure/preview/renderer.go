// Package preview renders a proof file into a PNG shown in the bill preview.
package preview

import (
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// ErrBroken is returned when a proof cannot be rendered
var ErrBroken = errors.New("proof cannot be rendered")

// DefaultDPI renders a proof page at screen resolution
const DefaultDPI = 72

// Renderer turns a stored proof (jpg, png, or pdf) into a PNG of its first page
type Renderer struct {
	dpi    float64
	logger *zap.Logger
}

// NewRenderer creates a renderer. A non-positive dpi uses DefaultDPI.
func NewRenderer(dpi float64, logger *zap.Logger) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{dpi: dpi, logger: logger}
}

// Render returns the first page of content as PNG bytes, or an error wrapping
// ErrBroken when content is empty or not a readable document
func (r *Renderer) Render(content []byte) ([]byte, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrBroken)
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		r.logger.Debug("Failed to open proof", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrBroken, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrBroken)
	}

	png, err := doc.ImagePNG(0, r.dpi)
	if err != nil {
		r.logger.Warn("Failed to render proof page", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrBroken, err)
	}
	return png, nil
}
