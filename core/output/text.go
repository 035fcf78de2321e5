package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"arm-cost/core/cost"
	"arm-cost/core/engine"
	"arm-cost/core/types"
)

var (
	colorHeader  = lipgloss.Color("#874BFD")
	colorCreate  = lipgloss.Color("#00FF99")
	colorDelete  = lipgloss.Color("#FF0055")
	colorWarning = lipgloss.Color("#F59E0B")
	colorSubtle  = lipgloss.Color("#64748B")
)

// TextFormatter renders the change list and a summary for terminals.
// Colors are dropped when w is not a terminal.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format returns the format type
func (f *TextFormatter) Format() Format {
	return FormatText
}

type textStyles struct {
	header   lipgloss.Style
	change   map[types.ChangeType]lipgloss.Style
	fallback lipgloss.Style
	subtle   lipgloss.Style
	warning  lipgloss.Style
	danger   lipgloss.Style
	total    lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		header: r.NewStyle().Foreground(colorHeader).Bold(true),
		change: map[types.ChangeType]lipgloss.Style{
			types.ChangeCreate: r.NewStyle().Foreground(colorCreate),
			types.ChangeDelete: r.NewStyle().Foreground(colorDelete),
			types.ChangeModify: r.NewStyle().Foreground(colorWarning),
		},
		fallback: r.NewStyle(),
		subtle:   r.NewStyle().Foreground(colorSubtle),
		warning:  r.NewStyle().Foreground(colorWarning),
		danger:   r.NewStyle().Foreground(colorDelete).Bold(true),
		total:    r.NewStyle().Bold(true),
	}
}

func (s textStyles) forChange(ct types.ChangeType) lipgloss.Style {
	if st, ok := s.change[ct]; ok {
		return st
	}
	return s.fallback
}

// Render produces output for the given result
func (f *TextFormatter) Render(w io.Writer, result *engine.Result) error {
	s := newTextStyles(w)
	var b strings.Builder

	if result.Failed() {
		b.WriteString(s.danger.Render("What-if preview failed") + "\n")
		writePreviewError(&b, result.Error, "  ")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(s.header.Render("Estimated changes") + "\n\n")

	report := result.Report
	if report == nil || (len(report.Items) == 0 && len(report.Diagnostics) == 0) {
		b.WriteString(s.subtle.Render("No changes detected.") + "\n")
	}

	if report != nil {
		for _, item := range report.Items {
			line := fmt.Sprintf("%s - %s [%s]", strings.ToUpper(string(item.ChangeType)), item.Name, item.ResourceType)
			b.WriteString(s.forChange(item.ChangeType).Render(line))
			fmt.Fprintf(&b, "  %s %s", item.Cost.String(), item.Currency)
			if item.ResolvedFrom == types.StateBefore {
				b.WriteString(s.subtle.Render("  (previous state)"))
			}
			b.WriteString("\n")
		}

		if len(report.Diagnostics) > 0 {
			b.WriteString("\n" + s.warning.Render(fmt.Sprintf("Skipped %d change(s):", len(report.Diagnostics))) + "\n")
			for _, d := range report.Diagnostics {
				target := d.ResourceID
				if target == "" {
					target = fmt.Sprintf("change #%d", d.Index)
				}
				b.WriteString(s.subtle.Render(fmt.Sprintf("  %s: %s (%s)", target, d.Message, d.Reason)) + "\n")
			}
		}

		b.WriteString("\n")
		b.WriteString(s.total.Render(fmt.Sprintf("Total: %s %s", report.Total.String(), report.Currency)) + "\n")
	}

	if limit, ok := result.Threshold.Limit(); ok {
		line := fmt.Sprintf("Threshold: %s", limit.String())
		if result.Outcome == cost.OutcomeThresholdExceeded {
			b.WriteString(s.danger.Render(line+" (exceeded)") + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writePreviewError(b *strings.Builder, e *types.PreviewError, indent string) {
	if e == nil {
		return
	}
	fmt.Fprintf(b, "%s%s: %s\n", indent, e.Code, e.Message)
	for _, d := range e.Details {
		writePreviewError(b, d, indent+"  ")
	}
}
