package dicomweb

// PixelArray is a decoded multi-dimensional pixel volume in row-major order.
// Dims follow the source ordering: rows then columns for planar data, with
// frame and channel axes around them for rank-3 and rank-4 volumes. Samples
// are widened to int32 so both signed and unsigned source representations
// up to 16 bits fit losslessly.
type PixelArray struct {
	Dims []int
	Data []int32
}

// Rank returns the number of dimensions.
func (a *PixelArray) Rank() int { return len(a.Dims) }

// Count returns the element count implied by Dims. A zero-rank or
// zero-length dimension yields 0.
func (a *PixelArray) Count() int {
	if len(a.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range a.Dims {
		if d <= 0 {
			return 0
		}
		n *= d
	}
	return n
}

// Consistent reports whether Data holds exactly the element count implied by
// Dims and the count is positive.
func (a *PixelArray) Consistent() bool {
	n := a.Count()
	return n > 0 && len(a.Data) == n
}
