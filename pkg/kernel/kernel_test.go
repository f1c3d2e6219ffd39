package kernel

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
)

func TestCostCountsWork(t *testing.T) {
    c := NewCost(0)
    ctx := context.Background()
    shape := tensor.NewConvShape(2, 3, 5, 3)
    if err := c.Conv(ctx, tensor.Activation{}, tensor.Filter{}, tensor.Activation{}, shape); err != nil { t.Fatalf("conv: %v", err) }
    if err := c.Linear(ctx, tensor.Activation{}, tensor.Filter{}, tensor.Activation{}, 1, 4, 5); err != nil { t.Fatalf("linear: %v", err) }
    if c.Calls() != 2 { t.Fatalf("calls = %d", c.Calls()) }
    if want := shape.MACs() + 20; c.MACs() != want { t.Fatalf("macs = %d, want %d", c.MACs(), want) }
}

func TestCostDelayHonoursContext(t *testing.T) {
    c := NewCost(time.Hour)
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    err := c.Pool(ctx, tensor.Activation{}, tensor.Activation{}, tensor.PoolShape{Channels: 1, InputWidth: 1, InputHeight: 1, WindowWidth: 1, WindowHeight: 1, Stride: 1})
    if !errors.Is(err, context.Canceled) { t.Fatalf("err = %v", err) }
}

func TestRecorderForwardsAndHooks(t *testing.T) {
    cost := NewCost(0)
    boom := errors.New("boom")
    r := &Recorder{Next: cost, Hook: func(c Call) error {
        if c.Op == OpPool { return boom }
        return nil
    }}
    ctx := context.Background()
    if err := r.Conv(ctx, tensor.Activation{Channels: 1}, tensor.Filter{}, tensor.Activation{}, tensor.NewConvShape(1, 1, 3, 1)); err != nil { t.Fatalf("conv: %v", err) }
    if err := r.Pool(ctx, tensor.Activation{}, tensor.Activation{}, tensor.PoolShape{}); !errors.Is(err, boom) { t.Fatalf("pool err = %v", err) }
    if r.Count(OpConv) != 1 || r.Count(OpPool) != 0 { t.Fatalf("counts conv=%d pool=%d", r.Count(OpConv), r.Count(OpPool)) }
    if cost.Calls() != 1 { t.Fatalf("forwarded %d calls", cost.Calls()) }
    if calls := r.Calls(); len(calls) != 1 || calls[0].In.Channels != 1 { t.Fatalf("calls = %+v", calls) }
}
