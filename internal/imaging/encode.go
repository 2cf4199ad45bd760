package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
)

// EncodeJPEG encodes the plane as a JPEG, shrinking it to fit within
// maxWidth×maxHeight while preserving aspect ratio. Planes already inside
// the bounds are encoded as-is; encoding never enlarges.
func EncodeJPEG(p *Plane, maxWidth, maxHeight, quality int) ([]byte, error) {
	if err := validatePlane(p); err != nil {
		return nil, err
	}
	resized := shrinkToFit(p, maxWidth, maxHeight)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, toImage(resized), &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes the plane as a PNG at its full size.
func EncodePNG(p *Plane) ([]byte, error) {
	if err := validatePlane(p); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toImage(p)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validatePlane(p *Plane) error {
	if p == nil || p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("imaging: invalid plane dimensions")
	}
	if p.Channels != 1 && p.Channels != 3 {
		return fmt.Errorf("imaging: unsupported channel count %d", p.Channels)
	}
	if len(p.Pixels) != p.Width*p.Height*p.Channels {
		return fmt.Errorf("imaging: pixel buffer size mismatch")
	}
	return nil
}

// shrinkToFit downsamples with nearest-neighbor selection. Aspect ratio is
// preserved; planes already within bounds pass through untouched.
func shrinkToFit(p *Plane, maxWidth, maxHeight int) *Plane {
	if p.Width <= maxWidth && p.Height <= maxHeight {
		return p
	}
	ratio := math.Min(float64(maxWidth)/float64(p.Width), float64(maxHeight)/float64(p.Height))
	nw := int(float64(p.Width) * ratio)
	nh := int(float64(p.Height) * ratio)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	out := make([]uint8, nw*nh*p.Channels)
	for y := 0; y < nh; y++ {
		sy := y * p.Height / nh
		for x := 0; x < nw; x++ {
			sx := x * p.Width / nw
			src := (sy*p.Width + sx) * p.Channels
			dst := (y*nw + x) * p.Channels
			copy(out[dst:dst+p.Channels], p.Pixels[src:src+p.Channels])
		}
	}
	return &Plane{Width: nw, Height: nh, Channels: p.Channels, Pixels: out}
}

func toImage(p *Plane) image.Image {
	if p.Channels == 3 {
		img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				i := (y*p.Width + x) * 3
				img.SetRGBA(x, y, color.RGBA{R: p.Pixels[i], G: p.Pixels[i+1], B: p.Pixels[i+2], A: 255})
			}
		}
		return img
	}
	img := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	copy(img.Pix, p.Pixels)
	return img
}
