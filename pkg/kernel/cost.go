package kernel

import (
    "context"
    "sync/atomic"
    "time"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

// Cost counts the work each call performs and optionally sleeps in
// proportion to it, so that uneven sparsity turns into uneven tile run
// times. A Cost may be shared by several tiles.
type Cost struct {
    // MACDelay is the time charged per multiply-accumulate (or comparison).
    MACDelay time.Duration

    calls atomic.Int64
    macs  atomic.Int64
}

// NewCost returns a Cost charging delay per MAC.
func NewCost(delay time.Duration) *Cost { return &Cost{MACDelay: delay} }

func (c *Cost) Conv(ctx context.Context, _ tensor.Activation, _ tensor.Filter, _ tensor.Activation, shape tensor.ConvShape) error {
    return c.charge(ctx, shape.MACs())
}

func (c *Cost) Pool(ctx context.Context, _, _ tensor.Activation, shape tensor.PoolShape) error {
    return c.charge(ctx, shape.Comparisons())
}

func (c *Cost) Linear(ctx context.Context, _ tensor.Activation, _ tensor.Filter, _ tensor.Activation, batch, inChannels, outChannels int) error {
    return c.charge(ctx, LinearMACs(batch, inChannels, outChannels))
}

// Calls returns the number of kernel invocations so far.
func (c *Cost) Calls() int64 { return c.calls.Load() }

// MACs returns the total work charged so far.
func (c *Cost) MACs() int64 { return c.macs.Load() }

func (c *Cost) charge(ctx context.Context, n int64) error {
    c.calls.Add(1)
    c.macs.Add(n)
    if c.MACDelay <= 0 || n == 0 { return ctx.Err() }
    d := time.Duration(n) * c.MACDelay
    tm := time.NewTimer(d)
    defer tm.Stop()
    select {
    case <-tm.C:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}
