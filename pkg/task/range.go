package task

import "fmt"

// ChannelRange is a convolution task: input channels [FirstIn, LastIn) by
// output channels [FirstOut, LastOut). A task has exactly one owner; when part
// of it is given away the giver never touches those channels again.
type ChannelRange struct {
    FirstIn  int
    LastIn   int
    FirstOut int
    LastOut  int
}

// IsEmpty reports whether the range holds no work on at least one axis.
func (r ChannelRange) IsEmpty() bool {
    return r.LastIn <= r.FirstIn || r.LastOut <= r.FirstOut
}

// Valid reports whether First <= Last on both axes. Empty ranges are valid.
func (r ChannelRange) Valid() bool {
    return r.FirstIn <= r.LastIn && r.FirstOut <= r.LastOut
}

// InChannels returns the width of the input axis.
func (r ChannelRange) InChannels() int { return r.LastIn - r.FirstIn }

// OutChannels returns the width of the output axis.
func (r ChannelRange) OutChannels() int { return r.LastOut - r.FirstOut }

func (r ChannelRange) String() string {
    return fmt.Sprintf("in[%d,%d) out[%d,%d)", r.FirstIn, r.LastIn, r.FirstOut, r.LastOut)
}

// PoolRange is a pooling task over channels [First, Last).
type PoolRange struct {
    First int
    Last  int
}

// IsEmpty reports whether the range holds no channels.
func (r PoolRange) IsEmpty() bool { return r.Last <= r.First }

// Channels returns the width of the range.
func (r PoolRange) Channels() int { return r.Last - r.First }

func (r PoolRange) String() string { return fmt.Sprintf("[%d,%d)", r.First, r.Last) }
