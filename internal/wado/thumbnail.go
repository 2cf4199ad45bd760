package wado

import (
	"dicomstatic/internal/imaging"
	"dicomstatic/pkg/dicomweb"
)

const (
	thumbnailMaxDim  = 128
	thumbnailQuality = 85
)

// displayPlane reduces and normalizes a pixel volume, degrading to the
// mid-gray fallback plane when the volume is not displayable.
func displayPlane(a *dicomweb.PixelArray) *imaging.Plane {
	raw, err := imaging.Reduce(a)
	if err != nil {
		return imaging.FallbackPlane()
	}
	return imaging.Normalize(raw)
}

// RenderThumbnail produces the JPEG thumbnail for a pixel volume. It never
// fails: undisplayable input degrades to the fallback plane, and the result
// always fits within 128×128.
func RenderThumbnail(a *dicomweb.PixelArray) []byte {
	plane := displayPlane(a)
	b, err := imaging.EncodeJPEG(plane, thumbnailMaxDim, thumbnailMaxDim, thumbnailQuality)
	if err != nil {
		// The fallback plane always encodes.
		b, _ = imaging.EncodeJPEG(imaging.FallbackPlane(), thumbnailMaxDim, thumbnailMaxDim, thumbnailQuality)
	}
	return b
}

// RenderPreview produces the full-size rendered PNG for a pixel volume,
// degrading the same way RenderThumbnail does.
func RenderPreview(a *dicomweb.PixelArray) []byte {
	plane := displayPlane(a)
	b, err := imaging.EncodePNG(plane)
	if err != nil {
		b, _ = imaging.EncodePNG(imaging.FallbackPlane())
	}
	return b
}
