package image

import (
	"bytes"
	"fmt"
	stdimage "image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"

	"civic-eye-server-go/internal/platform/config"
	"civic-eye-server-go/internal/platform/errors"
	"civic-eye-server-go/internal/platform/logging"
)

// Decoder turns raw upload bytes into the pixel and metadata views the
// forensic analyzers consume.
type Decoder struct {
	cfg    config.EngineConfig
	logger *logging.Logger
}

// NewDecoder constructs a decoder bounded by the engine limits.
func NewDecoder(cfg config.EngineConfig, logger *logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Decoder{cfg: cfg, logger: logger}
}

// Decode parses raw bytes into a DecodedImage. A failure here is the only
// condition that aborts scoring; a missing or unreadable EXIF segment
// degrades to an image without a metadata view.
func (d *Decoder) Decode(raw []byte) (*DecodedImage, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.KindDecode, "image.decode", "empty image payload")
	}
	if d.cfg.MaxFileSize > 0 && int64(len(raw)) > d.cfg.MaxFileSize {
		return nil, errors.New(errors.KindDecode, "image.decode",
			fmt.Sprintf("file size exceeds limit: %d bytes (max %d bytes)", len(raw), d.cfg.MaxFileSize))
	}

	dims, format, err := stdimage.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.KindDecode, "image.decode", "not a decodable image", err)
	}
	if err := d.checkBounds(dims, format); err != nil {
		return nil, err
	}

	img, format, err := stdimage.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.KindDecode, "image.decode", "not a decodable image", err)
	}

	decoded := fromStdImage(img, format)
	decoded.meta = decodeMetadata(raw, d.logger)

	return decoded, nil
}

func (d *Decoder) checkBounds(dims stdimage.Config, format string) error {
	if !d.formatAllowed(format) {
		return errors.New(errors.KindDecode, "image.decode",
			fmt.Sprintf("unsupported format: %s", format))
	}
	if d.cfg.MaxWidth > 0 && dims.Width > d.cfg.MaxWidth ||
		d.cfg.MaxHeight > 0 && dims.Height > d.cfg.MaxHeight {
		return errors.New(errors.KindDecode, "image.decode",
			fmt.Sprintf("dimensions exceed limit: %dx%d (max %dx%d)",
				dims.Width, dims.Height, d.cfg.MaxWidth, d.cfg.MaxHeight))
	}
	totalPixels := int64(dims.Width) * int64(dims.Height)
	if d.cfg.MaxPixels > 0 && totalPixels > d.cfg.MaxPixels {
		return errors.New(errors.KindDecode, "image.decode",
			fmt.Sprintf("pixel count exceeds limit: %d (max %d)", totalPixels, d.cfg.MaxPixels))
	}
	return nil
}

func (d *Decoder) formatAllowed(format string) bool {
	if len(d.cfg.AllowedFormats) == 0 {
		return true
	}
	for _, allowed := range d.cfg.AllowedFormats {
		if allowed == format {
			return true
		}
	}
	return false
}

// fromStdImage flattens any decoded image into interleaved RGB plus a luma
// matrix using the BT.601 integer weights.
func fromStdImage(img stdimage.Image, format string) *DecodedImage {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgb := make([]uint8, width*height*3)
	luma := make([]uint8, width*height)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := uint8(r16 >> 8)
			g := uint8(g16 >> 8)
			b := uint8(b16 >> 8)
			rgb[i*3] = r
			rgb[i*3+1] = g
			rgb[i*3+2] = b
			luma[i] = uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
			i++
		}
	}

	return &DecodedImage{
		Width:  width,
		Height: height,
		Format: format,
		rgb:    rgb,
		luma:   luma,
		std:    img,
	}
}

func decodeMetadata(raw []byte, logger *logging.Logger) *Metadata {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		// Most PNG/GIF uploads land here; camera JPEGs usually carry EXIF.
		logger.DebugTag("META", "no readable EXIF segment: %v", err)
		return nil
	}
	return &Metadata{exif: x}
}
