// Package report renders runner metrics into a Markdown document.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/perfgo/runnerstat/cost"
	"github.com/perfgo/runnerstat/model"
)

const timestampFormat = "2006-01-02 15:04:05 MST"

// Options control report rendering.
type Options struct {
	// Embedded in the report header
	GeneratedAt time.Time
	// Hourly rate per environment used for the cost analysis section
	PerEnvironmentRate float64
	// ISO code money amounts are shown in; USD renders with a dollar sign
	Currency   string
	Thresholds Thresholds
}

// DefaultOptions returns options matching the default rate table.
func DefaultOptions(generatedAt time.Time) Options {
	return Options{
		GeneratedAt:        generatedAt,
		PerEnvironmentRate: cost.DefaultConfig().PerEnvironmentRate,
		Currency:           cost.DefaultConfig().Currency,
		Thresholds:         DefaultThresholds(),
	}
}

// Summary holds the aggregate figures of a report.
type Summary struct {
	TotalRunners      int
	RemoteRunners     int
	LocalRunners      int
	TotalEnvironments int
	TotalCost         float64
	RemoteCost        float64
}

// Summarize aggregates metrics. Runners of unrecognized kinds count toward
// the total but toward neither the remote nor the local count.
func Summarize(metrics []model.Metrics) Summary {
	s := Summary{TotalRunners: len(metrics)}
	for _, m := range metrics {
		switch {
		case m.Kind.IsRemote():
			s.RemoteRunners++
			s.RemoteCost += m.EstimatedCost
		case m.Kind.IsLocal():
			s.LocalRunners++
		}
		s.TotalEnvironments += m.EnvironmentCount()
		s.TotalCost += m.EstimatedCost
	}
	s.TotalCost = cost.Round(s.TotalCost)
	s.RemoteCost = cost.Round(s.RemoteCost)
	return s
}

// Build renders the report. Runners appear in the order given.
func Build(metrics []model.Metrics, opts Options) string {
	var b strings.Builder
	summary := Summarize(metrics)

	b.WriteString("# Runner Metrics Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", opts.GeneratedAt.UTC().Format(timestampFormat))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total Runners: %d\n", summary.TotalRunners)
	fmt.Fprintf(&b, "- Remote Runners: %d\n", summary.RemoteRunners)
	fmt.Fprintf(&b, "- Local Runners: %d\n", summary.LocalRunners)
	fmt.Fprintf(&b, "- Total Environments: %d\n", summary.TotalEnvironments)
	fmt.Fprintf(&b, "- Total Estimated Cost: %s\n\n", formatMoney(summary.TotalCost, opts.Currency))

	// environment cost per hour is a rate, not an accrued amount
	b.WriteString("## Cost Analysis\n\n")
	fmt.Fprintf(&b, "- Remote Runner Cost: %s\n", formatMoney(summary.RemoteCost, opts.Currency))
	fmt.Fprintf(&b, "- Environment Cost per Hour: %s\n\n",
		formatMoney(float64(summary.TotalEnvironments)*opts.PerEnvironmentRate, opts.Currency))

	b.WriteString("## Runner Details\n\n")
	writeTable(&b,
		[]string{"Name", "Kind", "Region", "Phase", "Environments", "Uptime (hours)", "Estimated Cost"},
		runnerRows(metrics, opts.Currency))

	b.WriteString("## Environment Distribution\n\n")
	for _, m := range metrics {
		if m.EnvironmentCount() == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", escapeHeading(m.Name))
		rows := make([][]string, 0, len(m.Environments))
		for _, env := range m.Environments {
			rows = append(rows, []string{orDash(env.ID), orDash(env.ContextURL), orDash(env.Phase)})
		}
		writeTable(&b, []string{"Environment ID", "Context URL", "Phase"}, rows)
	}

	b.WriteString("## System Details\n\n")
	for _, m := range metrics {
		fmt.Fprintf(&b, "### %s\n\n", escapeHeading(m.Name))
		b.WriteString("```json\n")
		b.WriteString(formatDetails(m.SystemDetails))
		b.WriteString("\n```\n\n")
	}

	b.WriteString("## Recommendations\n\n")
	recommendations := Recommendations(metrics, opts.Thresholds, opts.Currency)
	if len(recommendations) == 0 {
		b.WriteString("- No recommendations at this time.\n")
	}
	for _, r := range recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	return b.String()
}

func runnerRows(metrics []model.Metrics, currency string) [][]string {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			m.Name,
			m.Kind.Short(),
			m.Region,
			string(m.Phase),
			fmt.Sprintf("%d", m.EnvironmentCount()),
			fmt.Sprintf("%d", m.UptimeHours),
			formatMoney(m.EstimatedCost, currency),
		})
	}
	return rows
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	writeRow(b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(b, sep)
	for _, row := range rows {
		writeRow(b, row)
	}
	b.WriteString("\n")
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(escapeCell(cell))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

var (
	cellReplacer    = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")
	headingReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

func escapeCell(s string) string {
	return cellReplacer.Replace(s)
}

// escapeHeading keeps a heading on a single line.
func escapeHeading(s string) string {
	return headingReplacer.Replace(s)
}

func formatDetails(details map[string]any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(details); err != nil {
		return fmt.Sprintf("%v", details)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatMoney(v float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
