package wado

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"dicomstatic/pkg/dicomweb"
)

// Frame artifacts are gzipped self-describing containers: a 4-byte magic,
// a rank byte, rank little-endian uint32 dims, then row-major int32 samples.
var frameMagic = [4]byte{'D', 'W', 'F', '1'}

const maxFrameRank = 4

var errFrameCorrupt = errors.New("frame artifact corrupt")

// encodeFrame serializes the full pixel volume of an instance into the
// gzipped frame container.
func encodeFrame(a *dicomweb.PixelArray) ([]byte, error) {
	if a == nil || !a.Consistent() {
		return nil, errors.New("frame: inconsistent pixel array")
	}
	if a.Rank() > maxFrameRank {
		return nil, fmt.Errorf("frame: rank %d exceeds %d", a.Rank(), maxFrameRank)
	}
	var buf bytes.Buffer
	buf.Write(frameMagic[:])
	buf.WriteByte(byte(a.Rank()))
	for _, d := range a.Dims {
		var dim [4]byte
		binary.LittleEndian.PutUint32(dim[:], uint32(d))
		buf.Write(dim[:])
	}
	sample := make([]byte, 4)
	for _, v := range a.Data {
		binary.LittleEndian.PutUint32(sample, uint32(v))
		buf.Write(sample)
	}
	return gzipBytes(buf.Bytes())
}

// decodeFrame parses a frame container back into a pixel volume.
func decodeFrame(data []byte) (*dicomweb.PixelArray, error) {
	raw, err := gunzipBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errFrameCorrupt, err)
	}
	if len(raw) < len(frameMagic)+1 || !bytes.Equal(raw[:4], frameMagic[:]) {
		return nil, fmt.Errorf("%w: bad header", errFrameCorrupt)
	}
	rank := int(raw[4])
	if rank < 1 || rank > maxFrameRank {
		return nil, fmt.Errorf("%w: rank %d", errFrameCorrupt, rank)
	}
	offset := 5
	if len(raw) < offset+rank*4 {
		return nil, fmt.Errorf("%w: truncated dims", errFrameCorrupt)
	}
	dims := make([]int, rank)
	count := 1
	for i := range dims {
		dims[i] = int(binary.LittleEndian.Uint32(raw[offset : offset+4]))
		offset += 4
		if dims[i] <= 0 {
			return nil, fmt.Errorf("%w: dim %d", errFrameCorrupt, dims[i])
		}
		count *= dims[i]
	}
	if len(raw)-offset != count*4 {
		return nil, fmt.Errorf("%w: sample count mismatch", errFrameCorrupt)
	}
	samples := make([]int32, count)
	for i := range samples {
		samples[i] = int32(binary.LittleEndian.Uint32(raw[offset : offset+4]))
		offset += 4
	}
	return &dicomweb.PixelArray{Dims: dims, Data: samples}, nil
}

// frameToUint16LE renders decoded samples as the unsigned 16-bit
// little-endian stream served by frame retrieval. Conversion wraps modulo
// 2^16, matching unsigned-cast semantics for signed sources.
func frameToUint16LE(a *dicomweb.PixelArray) []byte {
	out := make([]byte, len(a.Data)*2)
	for i, v := range a.Data {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
