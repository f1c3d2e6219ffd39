package driver

import (
    "time"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/balance"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/topology"
)

// Stats summarises one tile's run.
type Stats struct {
    Tile topology.TileID
    // Tasks are the tasks the tile finished, after any shrinking.
    Tasks []task.ChannelRange
    // Executed are the output runs the tile issued kernels for.
    Executed []task.ChannelRange

    KernelCalls int
    // MACs counts multiply-accumulates, and comparisons for pooling.
    MACs int64

    Acquired int
    Given    int
    Refused  int
    // ChannelsGiven counts output channels handed to neighbours.
    ChannelsGiven int

    State   balance.State
    Elapsed time.Duration
}

// Observe counts scheduler events. The scheduler calls it from the tile's
// own goroutine only.
func (s *Stats) Observe(e balance.Event) {
    switch e.Kind {
    case balance.EventAcquired:
        s.Acquired++
    case balance.EventGave:
        s.Given++
        s.ChannelsGiven += e.Task.OutChannels()
    case balance.EventRefused:
        s.Refused++
    }
}

// OutputChannels returns the number of output channels the tile finished.
func (s *Stats) OutputChannels() int {
    n := 0
    for _, t := range s.Tasks {
        n += t.OutChannels()
    }
    return n
}

type multiObserver []balance.Observer

func (m multiObserver) Observe(e balance.Event) {
    for _, o := range m {
        o.Observe(e)
    }
}
