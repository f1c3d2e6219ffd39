package report

import (
    "encoding/json"
    "fmt"
    "io"
    "strings"
    "time"

    "github.com/charmbracelet/lipgloss"
    "google.golang.org/protobuf/types/known/structpb"

    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol"
    "github.com/ucam-comparch-loki/lat-dynamic/pkg/protocol/codec"
)

// Formats lists every format Write accepts.
var Formats = []string{"text", "json", "yaml", "cbor", "proto"}

// Write renders s to w in the named format. Proto reports are written as a
// google.protobuf.Struct.
func Write(w io.Writer, format string, s Summary) error {
    if format == "" || format == "text" { return writeText(w, s) }
    f, err := protocol.ParseFormat(format)
    if err != nil { return err }
    reg, err := codec.Default()
    if err != nil { return err }
    c, err := protocol.CodecFor(reg, f)
    if err != nil { return err }

    var v any = s
    if f == protocol.FormatProto {
        if v, err = toStruct(s); err != nil { return err }
    }
    b, err := c.Marshal(v)
    if err != nil { return fmt.Errorf("encode %s report: %w", format, err) }
    if f == protocol.FormatJSON { b = append(b, '\n') }
    _, err = w.Write(b)
    return err
}

// toStruct converts s to a protobuf Struct through its JSON form.
func toStruct(s Summary) (*structpb.Struct, error) {
    b, err := json.Marshal(s)
    if err != nil { return nil, err }
    var m map[string]any
    if err := json.Unmarshal(b, &m); err != nil { return nil, err }
    return structpb.NewStruct(m)
}

func writeText(w io.Writer, s Summary) error {
    r := lipgloss.NewRenderer(w)
    var (
        title = r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
        label = r.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
        head  = r.NewStyle().Bold(true).Underline(true)
        good  = r.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
    )
    var b strings.Builder
    fmt.Fprintln(&b, title.Render(fmt.Sprintf("lat-dynamic run %s", s.RunID)))
    fmt.Fprintf(&b, "%s %dx%d image, %dx%d filter, %d -> %d channels (%d -> %d stored)\n", label.Render("layer"),
        s.Layer.ImageSize, s.Layer.ImageSize, s.Layer.FilterSize, s.Layer.FilterSize, s.Layer.InChannels, s.Layer.OutChannels, s.InSelected, s.OutSelected)
    fmt.Fprintf(&b, "%s %d tiles on a %s grid, mode %s, balancing %s, %s fabric\n", label.Render("mesh "), s.Tiles, s.Grid, s.Mode, s.Balance, s.Fabric)
    fmt.Fprintln(&b)

    fmt.Fprintln(&b, head.Render(fmt.Sprintf("%-5s %-8s %-6s %-6s %-12s %-9s %-6s %s", "tile", "outputs", "runs", "calls", "macs", "acquired", "given", "tasks")))
    for _, t := range s.PerTile {
        fmt.Fprintf(&b, "%-5d %-8d %-6d %-6d %-12d %-9d %-6d %s\n", t.Tile, t.OutputChannels, t.Runs, t.KernelCalls, t.MACs, t.Acquired, t.Given, strings.Join(t.Tasks, " "))
    }
    fmt.Fprintln(&b)
    fmt.Fprintf(&b, "%s %d kernel calls, %d MACs, %d steals\n", label.Render("total"), s.KernelCalls, s.MACs, s.Steals)
    fmt.Fprintln(&b, good.Render(fmt.Sprintf("Computation took %s", time.Duration(s.ElapsedNS))))
    _, err := io.WriteString(w, b.String())
    return err
}
