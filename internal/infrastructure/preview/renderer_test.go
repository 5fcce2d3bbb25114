package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(0, zap.NewNop())

	out, err := r.Render(samplePNG(t))

	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestRenderer_Broken(t *testing.T) {
	r := NewRenderer(96, zap.NewNop())

	_, err := r.Render(nil)
	assert.ErrorIs(t, err, ErrBroken)

	_, err = r.Render([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrBroken)
}
