package output

import (
	"fmt"
	"io"
	"strings"

	"arm-cost/core/cost"
	"arm-cost/core/engine"
)

// FormatMarkdown is a markdown report for pull request comments
const FormatMarkdown Format = "markdown"

// MarkdownFormatter renders a markdown table of priced changes
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render produces output for the given result
func (f *MarkdownFormatter) Render(w io.Writer, result *engine.Result) error {
	var b strings.Builder
	b.WriteString("## Estimated cost\n\n")

	if result.Failed() {
		b.WriteString("**What-if preview failed**")
		if result.Error != nil {
			fmt.Fprintf(&b, ": `%s` %s", result.Error.Code, escapeCell(result.Error.Message))
		}
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	report := result.Report
	if report != nil && len(report.Items) > 0 {
		b.WriteString("| Change | Resource | Type | Cost |\n")
		b.WriteString("|---|---|---|---:|\n")
		for _, item := range report.Items {
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s %s |\n",
				item.ChangeType, escapeCell(item.Name), item.ResourceType, item.Cost.String(), item.Currency)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No priced changes.\n\n")
	}

	if report != nil {
		fmt.Fprintf(&b, "**Total:** %s %s\n", report.Total.String(), report.Currency)
	}
	if limit, ok := result.Threshold.Limit(); ok {
		status := "within"
		if result.Outcome == cost.OutcomeThresholdExceeded {
			status = "**exceeded**"
		}
		fmt.Fprintf(&b, "\nThreshold %s: %s\n", limit.String(), status)
	}

	if report != nil && len(report.Diagnostics) > 0 {
		fmt.Fprintf(&b, "\n<details><summary>%d change(s) not priced</summary>\n\n", len(report.Diagnostics))
		for _, d := range report.Diagnostics {
			target := d.ResourceID
			if target == "" {
				target = fmt.Sprintf("change #%d", d.Index)
			}
			fmt.Fprintf(&b, "- `%s`: %s\n", target, escapeCell(d.Message))
		}
		b.WriteString("\n</details>\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
