// Package imaging reduces decoded pixel volumes to displayable planes and
// encodes preview images. Reduction and normalization follow fixed,
// modality-agnostic rules so previews are deterministic for any input.
package imaging

import (
	"errors"
	"fmt"

	"dicomstatic/pkg/dicomweb"
)

// ErrNotDisplayable reports a pixel volume that no reduction rule covers.
var ErrNotDisplayable = errors.New("imaging: pixel volume not displayable")

// RawPlane is a reduced two-dimensional sample grid prior to normalization.
// Samples are row-major and channel-interleaved; Channels is 1 (grayscale)
// or 3 (RGB).
type RawPlane struct {
	Width    int
	Height   int
	Channels int
	Samples  []int32
}

// Plane is an 8-bit normalized image plane ready for encoding.
type Plane struct {
	Width    int
	Height   int
	Channels int
	Pixels   []uint8
}

// FallbackPlane returns the canonical degraded preview: a 64×64 mid-gray
// plane used whenever pixel data cannot be materialized or reduced.
func FallbackPlane() *Plane {
	pix := make([]uint8, 64*64)
	for i := range pix {
		pix[i] = 128
	}
	return &Plane{Width: 64, Height: 64, Channels: 1, Pixels: pix}
}

// Reduce collapses a pixel volume to a displayable plane:
//
//	rank 2                  → the plane itself (grayscale)
//	rank 3, last dim 3      → the plane itself (interleaved RGB)
//	rank 3 otherwise        → middle slice along the last axis
//	rank 4                  → middle frame, first channel
//
// Anything else is not displayable and the caller falls back.
func Reduce(a *dicomweb.PixelArray) (*RawPlane, error) {
	if a == nil || !a.Consistent() {
		return nil, ErrNotDisplayable
	}
	dims := a.Dims
	switch len(dims) {
	case 2:
		return &RawPlane{Width: dims[1], Height: dims[0], Channels: 1, Samples: a.Data}, nil
	case 3:
		if dims[2] == 3 {
			return &RawPlane{Width: dims[1], Height: dims[0], Channels: 3, Samples: a.Data}, nil
		}
		h, w, depth := dims[0], dims[1], dims[2]
		k := depth / 2
		out := make([]int32, h*w)
		for r := 0; r < h; r++ {
			for c := 0; c < w; c++ {
				out[r*w+c] = a.Data[(r*w+c)*depth+k]
			}
		}
		return &RawPlane{Width: w, Height: h, Channels: 1, Samples: out}, nil
	case 4:
		frames, h, w, ch := dims[0], dims[1], dims[2], dims[3]
		f := frames / 2
		out := make([]int32, h*w)
		for r := 0; r < h; r++ {
			for c := 0; c < w; c++ {
				out[r*w+c] = a.Data[((f*h+r)*w+c)*ch]
			}
		}
		return &RawPlane{Width: w, Height: h, Channels: 1, Samples: out}, nil
	default:
		return nil, fmt.Errorf("%w: rank %d", ErrNotDisplayable, len(dims))
	}
}

// Normalize maps raw samples linearly onto 0–255 using the plane's own
// min/max. A flat plane (min == max) maps to all zeros.
func Normalize(r *RawPlane) *Plane {
	out := &Plane{Width: r.Width, Height: r.Height, Channels: r.Channels, Pixels: make([]uint8, len(r.Samples))}
	if len(r.Samples) == 0 {
		return out
	}
	min, max := r.Samples[0], r.Samples[0]
	for _, v := range r.Samples {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return out
	}
	span := int64(max) - int64(min)
	for i, v := range r.Samples {
		out.Pixels[i] = uint8((int64(v) - int64(min)) * 255 / span)
	}
	return out
}
