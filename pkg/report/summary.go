// Package report turns a finished run into a summary and writes it as styled
// text or in one of the protocol body encodings.
package report

import (
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/mesh"
)

// Summary is the serialisable view of a run.
type Summary struct {
    RunID   string `json:"run_id" yaml:"run_id"`
    Grid    string `json:"grid" yaml:"grid"`
    Tiles   int    `json:"tiles" yaml:"tiles"`
    Mode    string `json:"mode" yaml:"mode"`
    Balance string `json:"balance" yaml:"balance"`
    Fabric  string `json:"fabric" yaml:"fabric"`

    Layer Layer `json:"layer" yaml:"layer"`

    InSelected  int `json:"in_selected" yaml:"in_selected"`
    OutSelected int `json:"out_selected" yaml:"out_selected"`

    ElapsedNS   int64 `json:"elapsed_ns" yaml:"elapsed_ns"`
    KernelCalls int   `json:"kernel_calls" yaml:"kernel_calls"`
    MACs        int64 `json:"macs" yaml:"macs"`
    Steals      int   `json:"steals" yaml:"steals"`

    PerTile []Tile `json:"per_tile" yaml:"per_tile"`
}

type Layer struct {
    InChannels  int `json:"in_channels" yaml:"in_channels"`
    OutChannels int `json:"out_channels" yaml:"out_channels"`
    ImageSize   int `json:"image_size" yaml:"image_size"`
    FilterSize  int `json:"filter_size" yaml:"filter_size"`
}

// Tile is one tile's line of the report.
type Tile struct {
    Tile           int      `json:"tile" yaml:"tile"`
    Tasks          []string `json:"tasks" yaml:"tasks"`
    OutputChannels int      `json:"output_channels" yaml:"output_channels"`
    Runs           int      `json:"runs" yaml:"runs"`
    KernelCalls    int      `json:"kernel_calls" yaml:"kernel_calls"`
    MACs           int64    `json:"macs" yaml:"macs"`
    Acquired       int      `json:"acquired" yaml:"acquired"`
    Given          int      `json:"given" yaml:"given"`
    Refused        int      `json:"refused" yaml:"refused"`
    ChannelsGiven  int      `json:"channels_given" yaml:"channels_given"`
    ElapsedNS      int64    `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// FromResult summarises r.
func FromResult(r *mesh.Result) Summary {
    s := Summary{
        RunID:   r.RunID,
        Grid:    r.Grid.String(),
        Tiles:   r.Grid.Size(),
        Mode:    r.Mode.String(),
        Balance: r.Balance.String(),
        Fabric:  r.Fabric,
        Layer: Layer{
            InChannels:  r.Shape.InChannels,
            OutChannels: r.Shape.OutChannels,
            ImageSize:   r.Shape.ImageWidth,
            FilterSize:  r.Shape.FilterWidth,
        },
        InSelected:  r.InSelected,
        OutSelected: r.OutSelected,
        ElapsedNS:   r.Elapsed.Nanoseconds(),
        KernelCalls: r.KernelCalls(),
        MACs:        r.MACs(),
        Steals:      r.Steals(),
    }
    for _, st := range r.Tiles {
        t := Tile{
            Tile:           int(st.Tile),
            OutputChannels: st.OutputChannels(),
            Runs:           len(st.Executed),
            KernelCalls:    st.KernelCalls,
            MACs:           st.MACs,
            Acquired:       st.Acquired,
            Given:          st.Given,
            Refused:        st.Refused,
            ChannelsGiven:  st.ChannelsGiven,
            ElapsedNS:      st.Elapsed.Nanoseconds(),
        }
        for _, tk := range st.Tasks { t.Tasks = append(t.Tasks, tk.String()) }
        s.PerTile = append(s.PerTile, t)
    }
    return s
}
