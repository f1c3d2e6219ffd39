package driver

import "fmt"

// Mode selects how a tile exploits sparsity.
type Mode int

const (
    // ModeNone treats the layer as dense.
    ModeNone Mode = iota
    // ModeSimple runs one kernel call per selected (output, input) channel pair.
    ModeSimple
    // ModeAdaptive batches runs of consecutive selected channels on both axes.
    ModeAdaptive
)

// Modes lists every mode by name.
var Modes = []string{"none", "simple", "adaptive"}

func ParseMode(s string) (Mode, error) {
    switch s {
    case "none":
        return ModeNone, nil
    case "simple":
        return ModeSimple, nil
    case "adaptive":
        return ModeAdaptive, nil
    default:
        return ModeNone, fmt.Errorf("unknown mode parameter: '%s'", s)
    }
}

func (m Mode) String() string {
    switch m {
    case ModeNone:
        return "none"
    case ModeSimple:
        return "simple"
    case ModeAdaptive:
        return "adaptive"
    default:
        return fmt.Sprintf("mode-%d", int(m))
    }
}

// Sparse reports whether the mode works on compressed tensors.
func (m Mode) Sparse() bool { return m == ModeSimple || m == ModeAdaptive }
