package driver

import (
    "fmt"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/sparse"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

// DenseBuffers holds every tensor of a dense convolution.
type DenseBuffers struct {
    Input   tensor.Activation
    Weights tensor.Filter
    Output  tensor.Activation
}

// NewDenseBuffers places the input, weights and output of shape, each in its
// own memory group.
func NewDenseBuffers(alloc *tensor.Allocator, shape tensor.ConvShape) (*DenseBuffers, error) {
    return newDense(alloc, "", shape, tensor.GroupInput, tensor.GroupOutput)
}

func newDense(alloc *tensor.Allocator, prefix string, shape tensor.ConvShape, inGroup, outGroup tensor.MemoryGroup) (*DenseBuffers, error) {
    var (
        b   DenseBuffers
        err error
    )
    b.Input, err = alloc.Activation(prefix+"input", inGroup, shape.BatchSize, shape.InChannels, shape.ImageHeight, shape.ImageWidth)
    if err != nil { return nil, err }
    b.Weights, err = alloc.Filter(prefix+"weights", tensor.GroupWeights, shape.InChannels, shape.OutChannels, shape.FilterHeight, shape.FilterWidth)
    if err != nil { return nil, err }
    b.Output, err = alloc.Activation(prefix+"output", outGroup, shape.BatchSize, shape.OutChannels, shape.OutputHeight(), shape.OutputWidth())
    if err != nil { return nil, err }
    return &b, nil
}

// SparseBuffers holds every tensor of a sparse convolution: compressed input
// and output, dense weights, the input downsampled to one value per channel,
// and the auxiliary linear layer that consumes it.
type SparseBuffers struct {
    Input       sparse.Activations
    Weights     tensor.Filter
    Output      sparse.Activations
    Downsampled sparse.Activations
    Aux         *DenseBuffers
}

// NewSparseBuffers selects the input and output channels that survive the
// given sparsity percentages and places the buffers. Inputs read draws from
// the front of the sequence and outputs from the back.
func NewSparseBuffers(alloc *tensor.Allocator, shape tensor.ConvShape, draws sparse.Draws, inSparsity, outSparsity int) (*SparseBuffers, error) {
    if shape.InChannels+shape.OutChannels > draws.Len() {
        return nil, fmt.Errorf("driver: %d+%d channels need more than %d draws", shape.InChannels, shape.OutChannels, draws.Len())
    }
    inList, err := sparse.SelectInputs(draws, shape.InChannels, inSparsity)
    if err != nil { return nil, err }
    outList, err := sparse.SelectOutputs(draws, shape.OutChannels, outSparsity)
    if err != nil { return nil, err }

    var b SparseBuffers
    // Buffers are sized for every channel; the views cover only those stored.
    in, err := alloc.Activation("input", tensor.GroupInput, shape.BatchSize, shape.InChannels, shape.ImageHeight, shape.ImageWidth)
    if err != nil { return nil, err }
    in.Channels = inList.Len()
    b.Input = sparse.Activations{Dense: in, Channels: inList}

    b.Weights, err = alloc.Filter("weights", tensor.GroupWeights, shape.InChannels, shape.OutChannels, shape.FilterHeight, shape.FilterWidth)
    if err != nil { return nil, err }

    out, err := alloc.Activation("output", tensor.GroupOutput, shape.BatchSize, shape.OutChannels, shape.OutputHeight(), shape.OutputWidth())
    if err != nil { return nil, err }
    out.Channels = outList.Len()
    b.Output = sparse.Activations{Dense: out, Channels: outList}

    // moved between host and accelerator, so kept in the CPU group
    ds, err := alloc.Activation("downsampled", tensor.GroupCPU, shape.BatchSize, inList.Len(), 1, 1)
    if err != nil { return nil, err }
    b.Downsampled = sparse.Activations{Dense: ds, Channels: inList}

    b.Aux, err = newDense(alloc, "aux-", AuxShape(shape), tensor.GroupCPU, tensor.GroupCPU)
    if err != nil { return nil, err }
    return &b, nil
}

// AuxShape is the 1x1 layer applied to the downsampled input. With a 1x1
// image and filter it is a linear layer.
func AuxShape(shape tensor.ConvShape) tensor.ConvShape {
    aux := tensor.NewConvShape(shape.InChannels, shape.OutChannels, 1, 1)
    aux.BatchSize = shape.BatchSize
    return aux
}
