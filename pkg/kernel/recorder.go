package kernel

import (
    "context"
    "sync"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

// Op names a kernel entry point.
type Op string

const (
    OpConv   Op = "conv"
    OpPool   Op = "pool"
    OpLinear Op = "linear"
)

// Call is one recorded invocation. Only the fields relevant to Op are set.
type Call struct {
    Op    Op
    In    tensor.Activation
    W     tensor.Filter
    Out   tensor.Activation
    Conv  tensor.ConvShape
    Pool  tensor.PoolShape
    Batch int
    InCh  int
    OutCh int
}

// Recorder remembers every call and forwards it to Next, if set. Hook, if
// set, runs before forwarding and can fail the call.
type Recorder struct {
    Next Kernels
    Hook func(Call) error

    mu    sync.Mutex
    calls []Call
}

func (r *Recorder) Conv(ctx context.Context, in tensor.Activation, w tensor.Filter, out tensor.Activation, shape tensor.ConvShape) error {
    if err := r.record(Call{Op: OpConv, In: in, W: w, Out: out, Conv: shape}); err != nil { return err }
    if r.Next != nil { return r.Next.Conv(ctx, in, w, out, shape) }
    return nil
}

func (r *Recorder) Pool(ctx context.Context, in, out tensor.Activation, shape tensor.PoolShape) error {
    if err := r.record(Call{Op: OpPool, In: in, Out: out, Pool: shape}); err != nil { return err }
    if r.Next != nil { return r.Next.Pool(ctx, in, out, shape) }
    return nil
}

func (r *Recorder) Linear(ctx context.Context, in tensor.Activation, w tensor.Filter, out tensor.Activation, batch, inChannels, outChannels int) error {
    if err := r.record(Call{Op: OpLinear, In: in, W: w, Out: out, Batch: batch, InCh: inChannels, OutCh: outChannels}); err != nil { return err }
    if r.Next != nil { return r.Next.Linear(ctx, in, w, out, batch, inChannels, outChannels) }
    return nil
}

func (r *Recorder) record(c Call) error {
    if r.Hook != nil {
        if err := r.Hook(c); err != nil { return err }
    }
    r.mu.Lock()
    r.calls = append(r.calls, c)
    r.mu.Unlock()
    return nil
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
    r.mu.Lock()
    defer r.mu.Unlock()
    return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
    r.mu.Lock()
    defer r.mu.Unlock()
    n := 0
    for _, c := range r.calls {
        if c.Op == op { n++ }
    }
    return n
}
