// Package kernel defines the compute kernels tiles invoke and provides two
// implementations: Cost, which models run time from the work a call does, and
// Recorder, which remembers every call for inspection.
//
// Kernels see descriptors only. Nothing here reads or writes tensor data.
package kernel

import (
    "context"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

// Kernels is the accelerator library a tile drives. Every call blocks until
// its result is ready.
type Kernels interface {
    Conv(ctx context.Context, in tensor.Activation, w tensor.Filter, out tensor.Activation, shape tensor.ConvShape) error
    Pool(ctx context.Context, in, out tensor.Activation, shape tensor.PoolShape) error
    Linear(ctx context.Context, in tensor.Activation, w tensor.Filter, out tensor.Activation, batch, inChannels, outChannels int) error
}

// LinearMACs returns the multiply-accumulates of a linear layer.
func LinearMACs(batch, inChannels, outChannels int) int64 {
    if batch <= 0 { batch = 1 }
    return int64(batch) * int64(inChannels) * int64(outChannels)
}
