package driver

import (
    "context"
    "errors"
    "fmt"
    "time"

    "go.uber.org/zap"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/balance"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/fabric"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/kernel"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/observability"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/sparse"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// Config describes one tile's share of a layer.
type Config struct {
    Mode    Mode
    Shape   tensor.ConvShape
    Grid    topology.Grid
    Balance balance.Mode

    // Dense is required in ModeNone, Sparse in the other modes.
    Dense  *DenseBuffers
    Sparse *SparseBuffers

    Endpoint fabric.Endpoint
    Kernels  kernel.Kernels
    // Observer, if set, sees every scheduler event alongside the tile's Stats.
    Observer balance.Observer
    Logger   *zap.Logger
}

// Driver runs a tile: the sparse prologue, its initial task, then whatever it
// can take from its neighbours.
type Driver struct {
    cfg   Config
    tile  topology.TileID
    sched *balance.Scheduler
    log   *zap.Logger
    stats Stats
}

func New(cfg Config) (*Driver, error) {
    if cfg.Endpoint == nil { return nil, errors.New("driver: no endpoint") }
    if cfg.Kernels == nil { return nil, errors.New("driver: no kernels") }
    if cfg.Mode.Sparse() && cfg.Sparse == nil {
        return nil, fmt.Errorf("driver: mode %s needs sparse buffers", cfg.Mode)
    }
    if !cfg.Mode.Sparse() && cfg.Dense == nil {
        return nil, fmt.Errorf("driver: mode %s needs dense buffers", cfg.Mode)
    }
    d := &Driver{cfg: cfg, tile: cfg.Endpoint.Tile()}
    d.log = observability.Tile(cfg.Logger, int(d.tile))
    d.stats.Tile = d.tile

    var obs balance.Observer = &d.stats
    if cfg.Observer != nil { obs = multiObserver{&d.stats, cfg.Observer} }
    d.sched = balance.New(cfg.Endpoint, cfg.Grid, balance.Options{Mode: cfg.Balance, Observer: obs, Logger: d.log.Named("balance")})
    return d, nil
}

// Run executes the tile to completion. It returns only once every neighbour
// has been asked for work and every neighbour that can ask this tile has
// asked, so the tile's mailboxes are quiet afterwards.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
    start := time.Now()
    if d.cfg.Mode.Sparse() {
        if err := d.prologue(ctx); err != nil { return d.finish(start), err }
    }
    t := task.InitialConv(d.cfg.Shape, int(d.tile), d.cfg.Grid.Size())
    for {
        if !t.IsEmpty() {
            d.log.Debug("executing", zap.Stringer("task", t))
            if err := d.execute(ctx, &t); err != nil { return d.finish(start), err }
            d.stats.Tasks = append(d.stats.Tasks, t)
        }
        next, ok, err := d.sched.Request(ctx)
        if err != nil { return d.finish(start), err }
        if !ok { break }
        t = next
    }
    if err := d.sched.Drain(ctx); err != nil { return d.finish(start), err }
    st := d.finish(start)
    d.log.Debug("finished", zap.Int("calls", st.KernelCalls), zap.Int("acquired", st.Acquired), zap.Int("given", st.Given), zap.Duration("elapsed", st.Elapsed))
    return st, nil
}

func (d *Driver) finish(start time.Time) Stats {
    d.stats.State = d.sched.State()
    d.stats.Elapsed = time.Since(start)
    return d.stats
}

// prologue downsamples this tile's share of the input channels to one value
// each, then computes this tile's share of the auxiliary linear layer.
func (d *Driver) prologue(ctx context.Context) error {
    sp := d.cfg.Sparse
    shape := d.cfg.Shape
    pool := tensor.PoolShape{
        BatchSize:    shape.BatchSize,
        Channels:     shape.InChannels,
        InputWidth:   shape.ImageWidth,
        InputHeight:  shape.ImageHeight,
        WindowWidth:  shape.ImageWidth,
        WindowHeight: shape.ImageHeight,
        Stride:       1,
    }
    pr := task.InitialPool(pool, int(d.tile), d.cfg.Grid.Size())
    in := task.SparsePoolSlice(sp.Input, pr)
    out := task.SparsePoolSlice(sp.Downsampled, pr)
    if n := in.Channels.Len(); n > 0 {
        pool.Channels = n
        if err := d.call(d.cfg.Kernels.Pool(ctx, in.Dense, out.Dense, pool), pool.Comparisons()); err != nil {
            return fmt.Errorf("pool: %w", err)
        }
    }

    // The downsampled values reach the auxiliary input through host memory;
    // that copy is not modelled.
    aux := AuxShape(shape)
    at := task.InitialConv(aux, int(d.tile), d.cfg.Grid.Size())
    if at.IsEmpty() { return nil }
    w := task.WeightsSlice(sp.Aux.Weights, at)
    o := task.OutputSlice(sp.Aux.Output, at)
    err := d.cfg.Kernels.Linear(ctx, sp.Aux.Input, w, o, aux.BatchSize, at.InChannels(), at.OutChannels())
    if err := d.call(err, kernel.LinearMACs(aux.BatchSize, at.InChannels(), at.OutChannels())); err != nil {
        return fmt.Errorf("linear: %w", err)
    }
    return nil
}

func (d *Driver) call(err error, macs int64) error {
    if err == nil {
        d.stats.KernelCalls++
        d.stats.MACs += macs
    }
    return err
}

func (d *Driver) execute(ctx context.Context, t *task.ChannelRange) error {
    if d.cfg.Mode.Sparse() { return d.executeSparse(ctx, t) }
    return d.executeDense(ctx, t)
}

// executeDense issues the whole task at once unless balancing is on, in which
// case it goes one output channel at a time so requests are seen between
// channels.
func (d *Driver) executeDense(ctx context.Context, t *task.ChannelRange) error {
    b := d.cfg.Dense
    if !d.sched.Balancing() { return d.conv(ctx, b, *t) }
    for o := t.FirstOut; o < t.LastOut; o++ {
        if err := d.sched.Service(ctx, t, o); err != nil { return err }
        unit := task.ChannelRange{FirstIn: t.FirstIn, LastIn: t.LastIn, FirstOut: o, LastOut: o + 1}
        if err := d.conv(ctx, b, unit); err != nil { return err }
    }
    return nil
}

func (d *Driver) conv(ctx context.Context, b *DenseBuffers, u task.ChannelRange) error {
    shape := task.ConvShape(d.cfg.Shape, u)
    err := d.cfg.Kernels.Conv(ctx, task.InputSlice(b.Input, u), task.WeightsSlice(b.Weights, u), task.OutputSlice(b.Output, u), shape)
    if err := d.call(err, shape.MACs()); err != nil { return fmt.Errorf("conv %s: %w", u, err) }
    d.stats.Executed = append(d.stats.Executed, u)
    return nil
}

// executeSparse walks the stored output channels of t. Requests are serviced
// before each output run, so a neighbour waits for at most one run.
func (d *Driver) executeSparse(ctx context.Context, t *task.ChannelRange) error {
    sp := d.cfg.Sparse
    outs := sp.Output.Channels
    inStart, inCount := sparse.Resolve(sp.Input.Channels, t.FirstIn, t.LastIn)
    cursor := t.FirstOut
    for {
        start, count := sparse.Resolve(outs, cursor, t.LastOut)
        if count == 0 { return nil }
        cursor = outs.At(start)
        if err := d.sched.Service(ctx, t, cursor); err != nil { return err }
        // the task may have shrunk, but never past cursor
        start, count = sparse.Resolve(outs, cursor, t.LastOut)
        if count == 0 { return nil }
        run := 1
        if d.cfg.Mode == ModeAdaptive { run = sparse.RunLength(outs, start, start+count) }
        out := sp.Output.Stored(start, run)

        for i := inStart; i < inStart+inCount; {
            n := 1
            if d.cfg.Mode == ModeAdaptive { n = sparse.RunLength(sp.Input.Channels, i, inStart+inCount) }
            first := sp.Input.Channels.At(i)
            u := task.ChannelRange{FirstIn: first, LastIn: first + n, FirstOut: cursor, LastOut: cursor + run}
            shape := task.ConvShape(d.cfg.Shape, u)
            err := d.cfg.Kernels.Conv(ctx, sp.Input.Stored(i, n), task.WeightsSlice(sp.Weights, u), out, shape)
            if err := d.call(err, shape.MACs()); err != nil { return fmt.Errorf("conv %s: %w", u, err) }
            i += n
        }
        d.stats.Executed = append(d.stats.Executed, task.ChannelRange{FirstIn: t.FirstIn, LastIn: t.LastIn, FirstOut: cursor, LastOut: cursor + run})
        cursor += run
    }
}
