package sparse

import (
    "fmt"
    "sort"
)

// ChannelList is a strictly increasing list of original channel ids. It is
// immutable once built; sub-lists share storage with their parent.
type ChannelList struct {
    ids []int
}

// NewChannelList copies ids and checks they are non-negative and strictly
// increasing.
func NewChannelList(ids []int) (ChannelList, error) {
    for i, id := range ids {
        if id < 0 {
            return ChannelList{}, fmt.Errorf("sparse: negative channel id %d at %d", id, i)
        }
        if i > 0 && id <= ids[i-1] {
            return ChannelList{}, fmt.Errorf("sparse: channel ids not strictly increasing at %d (%d after %d)", i, id, ids[i-1])
        }
    }
    return ChannelList{ids: append([]int(nil), ids...)}, nil
}

// MustChannelList is NewChannelList that panics on invalid input.
func MustChannelList(ids ...int) ChannelList {
    l, err := NewChannelList(ids)
    if err != nil { panic(err) }
    return l
}

// Dense returns the list of every channel in [0, n).
func Dense(n int) ChannelList {
    ids := make([]int, n)
    for i := range ids { ids[i] = i }
    return ChannelList{ids: ids}
}

// Len returns the number of stored channels.
func (l ChannelList) Len() int { return len(l.ids) }

// At returns the original id stored at compressed index i.
func (l ChannelList) At(i int) int { return l.ids[i] }

// IDs returns a copy of the ids.
func (l ChannelList) IDs() []int { return append([]int(nil), l.ids...) }

// Sub returns the compressed positions [start, start+count).
func (l ChannelList) Sub(start, count int) ChannelList {
    return ChannelList{ids: l.ids[start : start+count : start+count]}
}

// Resolve returns the compressed range of positions whose ids lie in
// [first, last). When nothing matches it returns (l.Len(), 0).
func Resolve(l ChannelList, first, last int) (start, count int) {
    start = sort.SearchInts(l.ids, first)
    end := sort.SearchInts(l.ids, last)
    if end <= start {
        return len(l.ids), 0
    }
    return start, end - start
}

// RunLength returns the length of the run of consecutive ids starting at
// compressed index i, never extending to or past bound. bound is clipped to
// l.Len(); it returns 0 when i is not below bound.
func RunLength(l ChannelList, i, bound int) int {
    if bound > len(l.ids) { bound = len(l.ids) }
    if i < 0 || i >= bound { return 0 }
    k := 1
    for i+k < bound && l.ids[i+k] == l.ids[i]+k {
        k++
    }
    return k
}
