package tensor

// ElemSize is the size in bytes of one stored element.
const ElemSize = 4

// ConvShape describes one convolution layer (or one slice of it).
type ConvShape struct {
    BatchSize    int
    InChannels   int
    OutChannels  int
    ImageWidth   int
    ImageHeight  int
    FilterWidth  int
    FilterHeight int
    Groups       int
    Stride       int
    Dilation     int
}

// NewConvShape returns a single-batch, ungrouped, unit-stride square shape.
func NewConvShape(inChannels, outChannels, imageSize, filterSize int) ConvShape {
    return ConvShape{
        BatchSize:    1,
        InChannels:   inChannels,
        OutChannels:  outChannels,
        ImageWidth:   imageSize,
        ImageHeight:  imageSize,
        FilterWidth:  filterSize,
        FilterHeight: filterSize,
        Groups:       1,
        Stride:       1,
        Dilation:     1,
    }
}

// OutputWidth returns the width of an unpadded convolution's output.
func (s ConvShape) OutputWidth() int {
    return outExtent(s.ImageWidth, s.FilterWidth, s.Stride, s.Dilation)
}

// OutputHeight returns the height of an unpadded convolution's output.
func (s ConvShape) OutputHeight() int {
    return outExtent(s.ImageHeight, s.FilterHeight, s.Stride, s.Dilation)
}

// MACs returns the number of multiply-accumulates the shape performs.
func (s ConvShape) MACs() int64 {
    b := s.BatchSize
    if b <= 0 { b = 1 }
    return int64(b) * int64(s.InChannels) * int64(s.OutChannels) *
        int64(s.OutputWidth()) * int64(s.OutputHeight()) *
        int64(s.FilterWidth) * int64(s.FilterHeight)
}

func outExtent(in, filter, stride, dilation int) int {
    if stride <= 0 { stride = 1 }
    if dilation <= 0 { dilation = 1 }
    n := (in-dilation*(filter-1)-1)/stride + 1
    if n < 0 { return 0 }
    return n
}

// PoolShape describes a max-pooling layer.
type PoolShape struct {
    BatchSize    int
    Channels     int
    InputWidth   int
    InputHeight  int
    WindowWidth  int
    WindowHeight int
    Stride       int
}

// Comparisons returns the number of element comparisons the pool performs.
func (p PoolShape) Comparisons() int64 {
    b := p.BatchSize
    if b <= 0 { b = 1 }
    outW := outExtent(p.InputWidth, p.WindowWidth, p.Stride, 1)
    outH := outExtent(p.InputHeight, p.WindowHeight, p.Stride, 1)
    return int64(b) * int64(p.Channels) * int64(outW) * int64(outH) *
        int64(p.WindowWidth) * int64(p.WindowHeight)
}
