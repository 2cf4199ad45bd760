package dicomfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"dicomstatic/pkg/dicomweb"
)

// ErrEncapsulatedPixelData marks pixel payloads in an encapsulated transfer
// syntax: the compressed bytes are preserved verbatim, but no sample volume
// can be decoded from them here.
var ErrEncapsulatedPixelData = errors.New("dicomfile: encapsulated pixel data not decoded")

// nativeGrid is one native frame flattened to pixel-major samples.
type nativeGrid struct {
	rows, cols int
	channels   int
	bits       int
	pixels     [][]int
}

func (g nativeGrid) validate() error {
	if g.rows <= 0 || g.cols <= 0 {
		return fmt.Errorf("dicomfile: frame is %dx%d", g.rows, g.cols)
	}
	if g.channels <= 0 {
		return errors.New("dicomfile: frame has no samples per pixel")
	}
	if len(g.pixels) != g.rows*g.cols {
		return fmt.Errorf("dicomfile: frame carries %d pixels, want %d", len(g.pixels), g.rows*g.cols)
	}
	return nil
}

// gridBytes renders the raw little-endian sample stream of all frames: one
// byte per sample up to 8 bits, two bytes above.
func gridBytes(grids []nativeGrid) ([]byte, error) {
	size := 0
	for _, g := range grids {
		width := 1
		if g.bits > 8 {
			width = 2
		}
		size += len(g.pixels) * g.channels * width
	}
	out := make([]byte, 0, size)
	for _, g := range grids {
		if err := g.validate(); err != nil {
			return nil, err
		}
		wide := g.bits > 8
		for _, px := range g.pixels {
			if len(px) != g.channels {
				return nil, errors.New("dicomfile: ragged pixel samples")
			}
			for _, s := range px {
				if wide {
					var b [2]byte
					binary.LittleEndian.PutUint16(b[:], uint16(s))
					out = append(out, b[:]...)
				} else {
					out = append(out, byte(s))
				}
			}
		}
	}
	return out, nil
}

// gridArray assembles the sample volume: [rows cols] for a single
// single-channel frame, [rows cols channels] for a single multi-channel
// frame, [frames rows cols channels] once more than one frame is present.
func gridArray(grids []nativeGrid) (*dicomweb.PixelArray, error) {
	if len(grids) == 0 {
		return nil, errors.New("dicomfile: no native frames")
	}
	first := grids[0]
	data := make([]int32, 0, len(grids)*first.rows*first.cols*first.channels)
	for _, g := range grids {
		if err := g.validate(); err != nil {
			return nil, err
		}
		if g.rows != first.rows || g.cols != first.cols || g.channels != first.channels {
			return nil, errors.New("dicomfile: frames disagree on geometry")
		}
		for _, px := range g.pixels {
			if len(px) != g.channels {
				return nil, errors.New("dicomfile: ragged pixel samples")
			}
			for _, s := range px {
				data = append(data, int32(s))
			}
		}
	}
	var dims []int
	switch {
	case len(grids) > 1:
		dims = []int{len(grids), first.rows, first.cols, first.channels}
	case first.channels > 1:
		dims = []int{first.rows, first.cols, first.channels}
	default:
		dims = []int{first.rows, first.cols}
	}
	return &dicomweb.PixelArray{Dims: dims, Data: data}, nil
}
