package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// PrintJSON outputs the report as JSON
func PrintJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintTable outputs the report as a formatted table
func PrintTable(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Device:     %s\n", r.Device)
	fmt.Fprintf(w, "Kind:       %s\n", r.Kind)
	if r.Size != "" {
		fmt.Fprintf(w, "Size:       %s\n", r.Size)
	}
	if r.Server != "" {
		fmt.Fprintf(w, "Server:     %s\n", r.Server)
	}
	if p := r.Partition; p != nil {
		fmt.Fprintf(w, "Partition:  %s%d at %s\n", p.Map, p.Index, humanize.IBytes(uint64(p.Start)))
		printField(w, "Part Type:  ", p.Type)
		printField(w, "Part UUID:  ", p.UUID)
		printField(w, "Part Label: ", p.Label)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-10s %s\n", "PROPERTY", "VALUE")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, p := range r.Properties {
		if p.Error != "" {
			fmt.Fprintf(w, "%-10s (%s)\n", p.Target, p.Error)
			continue
		}
		fmt.Fprintf(w, "%-10s %s\n", p.Target, p.Value)
	}
}

// printField prints a field if value is non-empty
func printField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "%s%s\n", label, value)
	}
}
