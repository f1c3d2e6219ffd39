package task

// Split carves the upper part of t's remaining output channels off for a
// neighbour. cursor is the output channel t's owner is currently working on;
// everything in [cursor, LastOut) is still to do.
//
// The split point is the midpoint of cursor and LastOut, moved up by one when
// it would land on the cursor, so the owner always keeps the channel in hand.
// When fewer than two channels remain there is nothing to give: Split returns
// the empty range and leaves t alone.
func Split(t *ChannelRange, cursor int) ChannelRange {
    if cursor < t.FirstOut { cursor = t.FirstOut }
    if t.IsEmpty() || t.LastOut-cursor < 2 {
        return ChannelRange{}
    }
    mid := (cursor + t.LastOut) / 2
    if mid == cursor { mid++ }
    given := ChannelRange{FirstIn: t.FirstIn, LastIn: t.LastIn, FirstOut: mid, LastOut: t.LastOut}
    t.LastOut = mid
    return given
}
