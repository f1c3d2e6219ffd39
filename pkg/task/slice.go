package task

import (
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/sparse"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

// ConvShape narrows shape to the channels covered by t. Every other field is
// copied unchanged.
func ConvShape(shape tensor.ConvShape, t ChannelRange) tensor.ConvShape {
    shape.InChannels = t.InChannels()
    shape.OutChannels = t.OutChannels()
    return shape
}

// PoolShape narrows shape to the channels covered by t.
func PoolShape(shape tensor.PoolShape, t PoolRange) tensor.PoolShape {
    shape.Channels = t.Channels()
    return shape
}

func InputSlice(in tensor.Activation, t ChannelRange) tensor.Activation {
    return tensor.SliceDense(in, t.FirstIn, t.LastIn)
}

func OutputSlice(out tensor.Activation, t ChannelRange) tensor.Activation {
    return tensor.SliceDense(out, t.FirstOut, t.LastOut)
}

func WeightsSlice(w tensor.Filter, t ChannelRange) tensor.Filter {
    return tensor.SliceFilter(w, t.FirstIn, t.LastIn, t.FirstOut, t.LastOut)
}

func SparseInputSlice(in sparse.Activations, t ChannelRange) sparse.Activations {
    return sparse.Slice(in, t.FirstIn, t.LastIn)
}

func SparseOutputSlice(out sparse.Activations, t ChannelRange) sparse.Activations {
    return sparse.Slice(out, t.FirstOut, t.LastOut)
}

// PoolSlice selects t's channels of a dense pooling input or output.
func PoolSlice(a tensor.Activation, t PoolRange) tensor.Activation {
    return tensor.SliceDense(a, t.First, t.Last)
}

// SparsePoolSlice selects the stored channels of a whose ids fall in t.
func SparsePoolSlice(a sparse.Activations, t PoolRange) sparse.Activations {
    return sparse.Slice(a, t.First, t.Last)
}
