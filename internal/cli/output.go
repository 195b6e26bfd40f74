package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"dbconsole/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// Printer renders remote command results.
type Printer struct {
	out    io.Writer
	format OutputFormat
}

// NewPrinter returns a printer for format writing to out.
func NewPrinter(out io.Writer, format OutputFormat) (*Printer, error) {
	switch format {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Printer{out: out, format: format}, nil
}

// PrintStatus renders one row per slot.
func (p *Printer) PrintStatus(statuses []services.SlotStatus) error {
	switch p.format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode status: %w", err)
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	case OutputFormatYAML:
		return p.outputYAML(statuses)
	default:
		return p.outputTable(statuses)
	}
}

// outputYAML goes through JSON so the YAML keys match the JSON field names.
func (p *Printer) outputYAML(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	_, err = p.out.Write(yamlData)
	return err
}

func (p *Printer) outputTable(statuses []services.SlotStatus) error {
	if len(statuses) == 0 {
		_, err := fmt.Fprintln(p.out, text.FgYellow.Sprint("No services found"))
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SERVICE"),
		text.FgHiCyan.Sprint("STATE"),
		text.FgHiCyan.Sprint("DETAIL"),
		text.FgHiCyan.Sprint("URL"),
	})

	for _, st := range statuses {
		detail := st.Status
		if st.LaunchError != "" {
			detail = st.LaunchError
		}
		t.AppendRow(table.Row{st.Kind.String(), formatState(st), detail, st.URL})
	}

	t.Render()
	return nil
}

// formatState colours the slot state the way the console UI does.
func formatState(st services.SlotStatus) string {
	switch {
	case st.Running:
		return text.FgGreen.Sprint("running")
	case st.LaunchError != "":
		return text.FgRed.Sprint("failed")
	case st.Present:
		return text.FgYellow.Sprint("stopped")
	default:
		return text.FgHiBlack.Sprint("absent")
	}
}
