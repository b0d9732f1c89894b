package collab

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

// ImageRenderer draws text onto a fixed-size white canvas and returns PNG bytes.
type ImageRenderer struct {
	Width  int
	Height int
}

// NewImageRenderer creates a renderer with the default 600x200 canvas.
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{Width: 600, Height: 200}
}

// Render produces a PNG with the text centered in black on white.
func (r *ImageRenderer) Render(text string) ([]byte, error) {
	dc := gg.NewContext(r.Width, r.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.DrawStringWrapped(text,
		float64(r.Width)/2, float64(r.Height)/2,
		0.5, 0.5,
		float64(r.Width)-40, 1.5,
		gg.AlignCenter,
	)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", domain.ErrCollaborator, err)
	}
	return buf.Bytes(), nil
}
