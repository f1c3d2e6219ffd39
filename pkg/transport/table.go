package transport

import (
    "sort"
    "strconv"
    "sync"

    "golang.org/x/sync/singleflight"
)

// Table holds the links one tile has open. Outbound links are keyed by the
// tile they reach and dialled at most once; inbound links start anonymous
// and are bound to their sender once its first frame arrives.
type Table struct {
    mu     sync.Mutex
    out    map[int]Link
    in     map[Link]int // -1 until bound
    dials  singleflight.Group
    closed bool
}

func NewTable() *Table { return &Table{out: make(map[int]Link), in: make(map[Link]int)} }

// Get returns the outbound link to tile, calling dial if there is none yet.
// Concurrent callers for the same tile share one dial.
func (t *Table) Get(tile int, dial func() (Link, error)) (Link, error) {
    t.mu.Lock()
    if l, ok := t.out[tile]; ok {
        t.mu.Unlock()
        return l, nil
    }
    t.mu.Unlock()
    v, err, _ := t.dials.Do(strconv.Itoa(tile), func() (any, error) {
        t.mu.Lock()
        if l, ok := t.out[tile]; ok {
            t.mu.Unlock()
            return l, nil
        }
        t.mu.Unlock()
        l, err := dial()
        if err != nil { return nil, err }
        t.mu.Lock()
        defer t.mu.Unlock()
        if t.closed {
            _ = l.Close()
            return nil, ErrClosed
        }
        t.out[tile] = l
        return l, nil
    })
    if err != nil { return nil, err }
    return v.(Link), nil
}

// Adopt records an accepted link. It returns false, closing l, once the
// table has been closed.
func (t *Table) Adopt(l Link) bool {
    t.mu.Lock()
    defer t.mu.Unlock()
    if t.closed {
        _ = l.Close()
        return false
    }
    t.in[l] = -1
    return true
}

// Bind names the sender of an adopted link.
func (t *Table) Bind(l Link, tile int) {
    t.mu.Lock()
    defer t.mu.Unlock()
    if _, ok := t.in[l]; ok { t.in[l] = tile }
}

// Senders returns the tiles that have bound an inbound link, ascending.
func (t *Table) Senders() []int {
    t.mu.Lock()
    defer t.mu.Unlock()
    seen := make(map[int]bool)
    var out []int
    for _, tile := range t.in {
        if tile < 0 || seen[tile] { continue }
        seen[tile] = true
        out = append(out, tile)
    }
    sort.Ints(out)
    return out
}

// Counters sums the traffic over every link in the table.
func (t *Table) Counters() Counters {
    t.mu.Lock()
    defer t.mu.Unlock()
    var c Counters
    add := func(l Link) {
        lc := l.Counters()
        c.FramesSent += lc.FramesSent
        c.FramesRecv += lc.FramesRecv
        c.BytesSent += lc.BytesSent
        c.BytesRecv += lc.BytesRecv
    }
    for _, l := range t.out { add(l) }
    for l := range t.in { add(l) }
    return c
}

// Close closes every link and refuses new ones.
func (t *Table) Close() {
    t.mu.Lock()
    defer t.mu.Unlock()
    t.closed = true
    for tile, l := range t.out {
        _ = l.Close()
        delete(t.out, tile)
    }
    for l := range t.in {
        _ = l.Close()
        delete(t.in, l)
    }
}
