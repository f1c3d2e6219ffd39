package mesh

import (
    "errors"
    "fmt"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/task"
)

// ErrCoverage reports that the tiles did not execute every output channel
// exactly once.
var ErrCoverage = errors.New("mesh: coverage")

// CoverageError lists the offending output channels.
type CoverageError struct {
    What       string
    Missing    []int
    Duplicated []int
}

func (e *CoverageError) Error() string {
    return fmt.Sprintf("mesh: %s coverage: missing %v, duplicated %v", e.What, clip(e.Missing), clip(e.Duplicated))
}

func (e *CoverageError) Is(target error) bool { return target == ErrCoverage }

func clip(v []int) []int {
    if len(v) > 16 { return v[:16] }
    return v
}

// checkCoverage counts how often each output channel in [0, n) appears in
// ranges and compares against want, which marks the channels that must appear
// exactly once. Everything else must not appear at all.
func checkCoverage(what string, n int, want func(int) bool, ranges [][]task.ChannelRange) error {
    seen := make([]int, n)
    var stray []int
    for _, rs := range ranges {
        for _, r := range rs {
            for c := r.FirstOut; c < r.LastOut; c++ {
                if c < 0 || c >= n {
                    stray = append(stray, c)
                    continue
                }
                seen[c]++
            }
        }
    }
    e := &CoverageError{What: what, Duplicated: stray}
    for c, k := range seen {
        switch {
        case want(c) && k == 0:
            e.Missing = append(e.Missing, c)
        case k > 1, !want(c) && k > 0:
            e.Duplicated = append(e.Duplicated, c)
        }
    }
    if len(e.Missing) == 0 && len(e.Duplicated) == 0 { return nil }
    return e
}
