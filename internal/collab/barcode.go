package collab

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

// BarcodeDecoder reads QR codes and retail (UPC/EAN) barcodes out of images.
type BarcodeDecoder struct{}

// NewBarcodeDecoder creates a decoder.
func NewBarcodeDecoder() *BarcodeDecoder {
	return &BarcodeDecoder{}
}

// Decode returns the payloads of every barcode recognized in the image.
// An unreadable image wraps ErrCollaborator; an image with no barcode in it
// is not an error, it yields an empty slice.
func (d *BarcodeDecoder) Decode(data []byte) ([]string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", domain.ErrCollaborator, err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: binarize image: %v", domain.ErrCollaborator, err)
	}

	readers := []gozxing.Reader{
		qrcode.NewQRCodeReader(),
		oned.NewMultiFormatUPCEANReader(nil),
	}
	var out []string
	for _, r := range readers {
		if res, err := r.Decode(bmp, nil); err == nil {
			out = append(out, res.GetText())
		}
	}
	return out, nil
}
