package image

import (
	stdimage "image"
)

// DecodedImage owns the per-request pixel views derived from one upload.
// The RGB and luma matrices are built from the same decode, so both views
// always depict identical pixel content. Metadata may be absent; absence is
// modeled, not an error.
type DecodedImage struct {
	Width  int
	Height int
	Format string

	rgb  []uint8 // 3 bytes per pixel, row-major
	luma []uint8 // 1 byte per pixel, row-major

	std  stdimage.Image // retained for lossy re-encoding
	meta *Metadata      // nil when the byte stream carried no readable EXIF
}

// Pixels returns the total pixel count.
func (d *DecodedImage) Pixels() int {
	return d.Width * d.Height
}

// RGBAt returns the 8-bit channel intensities at (x, y).
func (d *DecodedImage) RGBAt(x, y int) (r, g, b uint8) {
	i := (y*d.Width + x) * 3
	return d.rgb[i], d.rgb[i+1], d.rgb[i+2]
}

// LumaAt returns the 8-bit grayscale intensity at (x, y).
func (d *DecodedImage) LumaAt(x, y int) uint8 {
	return d.luma[y*d.Width+x]
}

// Luma exposes the grayscale matrix, row-major. Callers must not mutate it.
func (d *DecodedImage) Luma() []uint8 {
	return d.luma
}

// Std returns the decoded stdlib image for re-encoding passes.
func (d *DecodedImage) Std() stdimage.Image {
	return d.std
}

// Metadata returns the EXIF view, or nil when none survived decoding.
func (d *DecodedImage) Metadata() *Metadata {
	return d.meta
}
