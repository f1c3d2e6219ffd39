package balance

import (
    "context"
    "fmt"

    "go.uber.org/zap"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/fabric"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// Options configure a Scheduler.
type Options struct {
    Mode     Mode
    Observer Observer
    Logger   *zap.Logger
}

// Scheduler runs the protocol for one tile. It is not safe for concurrent
// use; the tile's single worker drives it.
type Scheduler struct {
    ep    fabric.Endpoint
    grid  topology.Grid
    tile  topology.TileID
    mode  Mode
    obs   Observer
    log   *zap.Logger
    state State
}

func New(ep fabric.Endpoint, grid topology.Grid, opts Options) *Scheduler {
    s := &Scheduler{
        ep:    ep,
        grid:  grid,
        tile:  ep.Tile(),
        mode:  opts.Mode,
        obs:   opts.Observer,
        log:   opts.Logger,
        state: NewState(grid, ep.Tile()),
    }
    if s.obs == nil { s.obs = nopObserver{} }
    if s.log == nil { s.log = zap.L().Named("balance").With(zap.Int("tile", int(s.tile))) }
    return s
}

// Balancing reports whether the scheduler exchanges work at all.
func (s *Scheduler) Balancing() bool { return s.mode == ModeEnabled }

// State returns a snapshot of the request counters.
func (s *Scheduler) State() State { return s.state }

// Tile returns the id of the tile the scheduler runs on.
func (s *Scheduler) Tile() topology.TileID { return s.tile }

// Service answers every pending request with a share of t. cursor is the
// first output channel of t not yet started. t shrinks by whatever is given
// away.
func (s *Scheduler) Service(ctx context.Context, t *task.ChannelRange, cursor int) error {
    if !s.Balancing() { return nil }
    for s.ep.Pending(protocol.ChannelRequest) {
        rec := <-s.ep.Inbox(protocol.ChannelRequest)
        if err := s.answer(ctx, rec, func() task.ChannelRange { return task.Split(t, cursor) }); err != nil {
            return err
        }
    }
    return nil
}

// Request asks the remaining neighbours for work, in direction order, and
// returns the first non-empty task offered. ok is false once every neighbour
// has been asked without success.
func (s *Scheduler) Request(ctx context.Context) (t task.ChannelRange, ok bool, err error) {
    if !s.Balancing() { return task.ChannelRange{}, false, nil }
    for s.state.RequestsMade < topology.NumDirections {
        d := topology.Directions[s.state.RequestsMade]
        nb := s.grid.Neighbor(s.tile, d)
        s.state.RequestsMade++
        if nb == s.tile {
            s.obs.Observe(Event{Kind: EventSkipped, Tile: s.tile, Peer: nb})
            continue
        }
        got, err := s.ask(ctx, nb)
        if err != nil {
            return task.ChannelRange{}, false, fmt.Errorf("tile %d asking %s neighbour %d: %w", s.tile, d, nb, err)
        }
        if !got.IsEmpty() {
            s.log.Debug("acquired work", zap.Int("from", int(nb)), zap.Stringer("task", got))
            s.obs.Observe(Event{Kind: EventAcquired, Tile: s.tile, Peer: nb, Task: got})
            return got, true, nil
        }
        s.obs.Observe(Event{Kind: EventEmpty, Tile: s.tile, Peer: nb})
    }
    return task.ChannelRange{}, false, nil
}

// Drain refuses requests until every neighbour that can ask has asked.
func (s *Scheduler) Drain(ctx context.Context) error {
    if !s.Balancing() { return nil }
    for s.state.RequestsReceived < topology.NumDirections {
        select {
        case rec := <-s.ep.Inbox(protocol.ChannelRequest):
            if err := s.refuse(ctx, rec); err != nil { return err }
        case <-ctx.Done():
            return ctx.Err()
        }
    }
    s.log.Debug("drained", zap.Stringer("state", s.state))
    return nil
}

func (s *Scheduler) ask(ctx context.Context, nb topology.TileID) (task.ChannelRange, error) {
    if err := s.ep.Send(ctx, nb, protocol.NewRequest(s.tile, nb)); err != nil {
        return task.ChannelRange{}, err
    }
    // Nothing is left to give, so every request that arrives while waiting is
    // refused. A neighbour blocked on this tile is thereby always released.
    for {
        select {
        case rec := <-s.ep.Inbox(protocol.ChannelRequest):
            if err := s.refuse(ctx, rec); err != nil { return task.ChannelRange{}, err }
        case rec := <-s.ep.Inbox(protocol.ChannelResponse):
            if rec.Kind != protocol.KindResponse || rec.Source != nb {
                return task.ChannelRange{}, fmt.Errorf("%w: expected response from %d, got %v", ErrProtocol, nb, rec)
            }
            if !rec.Task.Valid() {
                return task.ChannelRange{}, fmt.Errorf("%w: malformed task %v from %d", ErrProtocol, rec.Task, nb)
            }
            return rec.Task, nil
        case <-ctx.Done():
            return task.ChannelRange{}, ctx.Err()
        }
    }
}

func (s *Scheduler) refuse(ctx context.Context, rec protocol.Record) error {
    return s.answer(ctx, rec, func() task.ChannelRange { return task.ChannelRange{} })
}

// answer validates a request, then sends share() to the requester.
func (s *Scheduler) answer(ctx context.Context, rec protocol.Record, share func() task.ChannelRange) error {
    if rec.Kind != protocol.KindRequest {
        return fmt.Errorf("%w: tile %d got %v on the request channel", ErrProtocol, s.tile, rec)
    }
    if !s.grid.IsNeighbor(s.tile, rec.Source) {
        return fmt.Errorf("%w: tile %d got a request from non-neighbour %d", ErrProtocol, s.tile, rec.Source)
    }
    if s.state.RequestsReceived >= topology.NumDirections {
        return fmt.Errorf("%w: tile %d got more than %d requests", ErrProtocol, s.tile, topology.NumDirections)
    }
    given := share()
    if err := s.ep.Send(ctx, rec.Source, protocol.NewResponse(s.tile, rec.Source, given)); err != nil {
        return fmt.Errorf("tile %d answering %d: %w", s.tile, rec.Source, err)
    }
    s.state.RequestsReceived++
    if given.IsEmpty() {
        s.obs.Observe(Event{Kind: EventRefused, Tile: s.tile, Peer: rec.Source})
    } else {
        s.log.Debug("gave work", zap.Int("to", int(rec.Source)), zap.Stringer("task", given))
        s.obs.Observe(Event{Kind: EventGave, Tile: s.tile, Peer: rec.Source, Task: given})
    }
    return nil
}
