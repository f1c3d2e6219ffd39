package tensor

import "fmt"

// Address is a byte offset in the abstract address space an Allocator hands out.
type Address uint64

// MemoryGroup tags the physical memory a buffer should be placed in. Tensors
// used at the same time should sit in different groups to avoid conflicts.
type MemoryGroup int

const (
    GroupCPU MemoryGroup = iota // data touched directly by the host
    GroupInput
    GroupWeights
    GroupOutput
)

func (g MemoryGroup) String() string {
    switch g {
    case GroupCPU:
        return "cpu"
    case GroupInput:
        return "input"
    case GroupWeights:
        return "weights"
    case GroupOutput:
        return "output"
    default:
        return fmt.Sprintf("group-%d", int(g))
    }
}

// Activation describes a BCHW activation tensor. Strides are in bytes.
type Activation struct {
    Address       Address
    Group         MemoryGroup
    RowStride     int
    ColumnStride  int
    ChannelStride int
    BatchStride   int
    Channels      int // logical channel count of this view
}

// NewActivation lays out an unplaced activation tensor. Address and Group are
// left for the allocator.
func NewActivation(batch, channels, height, width int) Activation {
    a := Activation{Channels: channels}
    a.RowStride = ElemSize
    a.ColumnStride = width * a.RowStride
    a.ChannelStride = height * a.ColumnStride
    a.BatchStride = channels * a.ChannelStride
    return a
}

// Bytes returns the storage footprint of one batch of the view.
func (a Activation) Bytes() int { return a.Channels * a.ChannelStride }

// Filter describes an IOHW weight tensor. Strides are in bytes.
type Filter struct {
    Address          Address
    Group            MemoryGroup
    RowStride        int
    ColumnStride     int
    OutChannelStride int
    InChannelStride  int
    InChannels       int
    OutChannels      int
}

// NewFilter lays out an unplaced weight tensor.
func NewFilter(inChannels, outChannels, filterHeight, filterWidth int) Filter {
    f := Filter{InChannels: inChannels, OutChannels: outChannels}
    f.RowStride = ElemSize
    f.ColumnStride = filterWidth * f.RowStride
    f.OutChannelStride = filterHeight * f.ColumnStride
    f.InChannelStride = outChannels * f.OutChannelStride
    return f
}

// Bytes returns the storage footprint of the whole (unsliced) filter.
func (f Filter) Bytes() int { return f.InChannels * f.InChannelStride }
