// Package mesh runs one layer across a grid of tiles: it builds the buffers,
// starts a driver per tile, waits for every tile to finish and checks that
// the output channels were covered exactly once.
package mesh

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"
    "golang.org/x/sync/errgroup"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/balance"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/driver"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/fabric"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/kernel"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/sparse"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/tensor"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// Base address and alignment of the simulated address space.
const (
    baseAddress = 0x10000000
    alignment   = 64
)

// Options describe one run.
type Options struct {
    Shape   tensor.ConvShape
    Mode    driver.Mode
    Tiles   int
    Balance balance.Mode

    InSparsity  int
    OutSparsity int
    // Draws drive channel selection. When empty, Seed generates them.
    Draws sparse.Draws
    Seed  uint64

    // Fabric is one of fabric.Kinds; Listen is the host network fabrics bind.
    Fabric string
    Listen string

    // Kernels returns the kernels of a tile. Defaults to a kernel.Cost per
    // tile charging MACDelay.
    Kernels  func(topology.TileID) kernel.Kernels
    MACDelay time.Duration

    Logger *zap.Logger
}

// Result is everything a run produced.
type Result struct {
    RunID   string
    Grid    topology.Grid
    Mode    driver.Mode
    Balance balance.Mode
    Fabric  string
    Shape   tensor.ConvShape

    // Selected channels; equal to the channel counts in ModeNone.
    InSelected  int
    OutSelected int

    Tiles   []driver.Stats
    Elapsed time.Duration
}

// KernelCalls sums the kernel calls of every tile.
func (r *Result) KernelCalls() int {
    n := 0
    for _, t := range r.Tiles { n += t.KernelCalls }
    return n
}

// MACs sums the work of every tile.
func (r *Result) MACs() int64 {
    var n int64
    for _, t := range r.Tiles { n += t.MACs }
    return n
}

// Steals counts the tasks that changed hands.
func (r *Result) Steals() int {
    n := 0
    for _, t := range r.Tiles { n += t.Acquired }
    return n
}

// Run executes the layer. It returns once every tile is done, or on the
// first error from any tile or from the fabric.
func Run(ctx context.Context, opts Options) (*Result, error) {
    grid, err := topology.ForTiles(opts.Tiles)
    if err != nil { return nil, err }
    log := opts.Logger
    if log == nil { log = zap.L() }
    res := &Result{
        RunID:   uuid.NewString(),
        Grid:    grid,
        Mode:    opts.Mode,
        Balance: opts.Balance,
        Fabric:  opts.Fabric,
        Shape:   opts.Shape,
    }
    if res.Fabric == "" { res.Fabric = "chan" }
    log = log.With(zap.String("run", res.RunID))

    alloc := tensor.NewAllocator(baseAddress, alignment)
    var (
        dense *driver.DenseBuffers
        sp    *driver.SparseBuffers
    )
    if opts.Mode.Sparse() {
        draws := opts.Draws
        if draws.Len() == 0 { draws = sparse.GenerateDraws(opts.Seed, opts.Shape.InChannels+opts.Shape.OutChannels) }
        sp, err = driver.NewSparseBuffers(alloc, opts.Shape, draws, opts.InSparsity, opts.OutSparsity)
        if err != nil { return nil, err }
        res.InSelected, res.OutSelected = sp.Input.Channels.Len(), sp.Output.Channels.Len()
    } else {
        dense, err = driver.NewDenseBuffers(alloc, opts.Shape)
        if err != nil { return nil, err }
        res.InSelected, res.OutSelected = opts.Shape.InChannels, opts.Shape.OutChannels
    }
    log.Debug("buffers placed", zap.Int("bytes", alloc.Used()), zap.Int("regions", len(alloc.Regions())))

    runCtx, cancel := context.WithCancel(ctx)
    defer cancel()
    fab, err := fabric.Open(runCtx, res.Fabric, grid, opts.Listen)
    if err != nil { return nil, fmt.Errorf("open %s fabric: %w", res.Fabric, err) }
    defer fab.Close()

    kernels := opts.Kernels
    if kernels == nil {
        kernels = func(topology.TileID) kernel.Kernels { return kernel.NewCost(opts.MACDelay) }
    }

    drivers := make([]*driver.Driver, grid.Size())
    for i := range drivers {
        id := topology.TileID(i)
        drivers[i], err = driver.New(driver.Config{
            Mode:     opts.Mode,
            Shape:    opts.Shape,
            Grid:     grid,
            Balance:  opts.Balance,
            Dense:    dense,
            Sparse:   sp,
            Endpoint: fab.Endpoint(id),
            Kernels:  kernels(id),
            Logger:   log,
        })
        if err != nil { return nil, err }
    }

    log.Info("starting", zap.Stringer("grid", grid), zap.Stringer("mode", opts.Mode), zap.Stringer("balance", opts.Balance), zap.String("fabric", res.Fabric))
    res.Tiles = make([]driver.Stats, grid.Size())
    start := time.Now()
    g, gctx := errgroup.WithContext(runCtx)
    for i, d := range drivers {
        i, d := i, d
        g.Go(func() error {
            st, err := d.Run(gctx)
            res.Tiles[i] = st
            if err != nil { return fmt.Errorf("tile %d: %w", i, err) }
            return nil
        })
    }

    var fabricErr error
    watched := make(chan struct{})
    go func() {
        defer close(watched)
        select {
        case fabricErr = <-fab.Errs():
            cancel()
        case <-gctx.Done():
        }
    }()
    err = g.Wait()
    <-watched
    res.Elapsed = time.Since(start)
    if fabricErr != nil {
        log.Error("fabric failed", zap.Error(fabricErr))
        return res, fmt.Errorf("fabric: %w", fabricErr)
    }
    if err != nil {
        log.Error("run failed", zap.Error(err))
        return res, err
    }

    if err := verify(res, sp); err != nil {
        log.Error("coverage check failed", zap.Error(err))
        return res, err
    }
    log.Info("finished", zap.Duration("elapsed", res.Elapsed), zap.Int("kernel_calls", res.KernelCalls()), zap.Int64("macs", res.MACs()), zap.Int("steals", res.Steals()))
    return res, nil
}

// verify checks that the finished tasks tile the statically assigned output
// channels and that the executed runs hit every selected channel once.
func verify(res *Result, sp *driver.SparseBuffers) error {
    n := res.Shape.OutChannels
    assigned := make([]bool, n)
    for i := 0; i < res.Grid.Size(); i++ {
        t := task.InitialConv(res.Shape, i, res.Grid.Size())
        for c := t.FirstOut; c < t.LastOut; c++ { assigned[c] = true }
    }
    tasks := make([][]task.ChannelRange, len(res.Tiles))
    runs := make([][]task.ChannelRange, len(res.Tiles))
    for i, st := range res.Tiles {
        tasks[i], runs[i] = st.Tasks, st.Executed
    }
    inAssigned := func(c int) bool { return assigned[c] }
    var errs []error
    errs = append(errs, checkCoverage("task", n, inAssigned, tasks))

    selected := inAssigned
    if sp != nil {
        ids := make([]bool, n)
        for _, c := range sp.Output.Channels.IDs() { ids[c] = true }
        selected = func(c int) bool { return assigned[c] && ids[c] }
    }
    errs = append(errs, checkCoverage("execution", n, selected, runs))
    return errors.Join(errs...)
}
