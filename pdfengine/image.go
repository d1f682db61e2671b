package pdfengine

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// nativeTypes are the decoder formats gofpdf embeds without conversion.
var nativeTypes = map[string]string{
	"png":  "PNG",
	"jpeg": "JPG",
	"gif":  "GIF",
}

func (d *Document) importImage(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, sourceError(path, fmt.Errorf("%w: %v", ErrSourceUnreadable, err))
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return 0, sourceError(path, fmt.Errorf("%w: not a decodable image", ErrSourceUnreadable))
	}

	tp, ok := nativeTypes[format]
	if !ok {
		data, err = toPNG(data)
		if err != nil {
			return 0, sourceError(path, err)
		}
		tp = "PNG"
	}

	d.images++
	name := fmt.Sprintf("asset-%d-%s", d.images, format)
	opts := gofpdf.ImageOptions{ImageType: tp}
	err = d.guard(func() {
		d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	})
	if err != nil {
		return 0, sourceError(path, err)
	}

	d.pdf.AddPage()
	left, top, right, bottom := d.pdf.GetMargins()
	pageW, pageH := d.pdf.GetPageSize()
	boxW, boxH := pageW-left-right, pageH-top-bottom
	w, h := fit(float64(cfg.Width), float64(cfg.Height), boxW, boxH)
	d.pdf.ImageOptions(name, left+(boxW-w)/2, top, w, h, false, opts, 0, "")
	if d.pdf.Err() {
		err := d.pdf.Error()
		d.pdf.ClearError()
		return 1, sourceError(path, fmt.Errorf("%w: %v", ErrSourceUnreadable, err))
	}
	return 1, nil
}

// toPNG re-encodes formats gofpdf cannot embed directly.
func toPNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	return buf.Bytes(), nil
}

// fit scales w×h to the largest size inside boxW×boxH keeping the aspect
// ratio.
func fit(w, h, boxW, boxH float64) (float64, float64) {
	scale := boxW / w
	if s := boxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
