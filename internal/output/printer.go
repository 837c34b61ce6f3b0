// Package output renders pipeline progress on the terminal.
//
// The [Printer] styles its output with lipgloss. Colors are chosen by a
// renderer bound to the destination writer, so output captured in a buffer
// (tests, pipes) stays plain text.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sra2mito/internal/tool"
)

// Printer writes styled progress output.
type Printer struct {
	w io.Writer

	box   lipgloss.Style
	title lipgloss.Style
	step  lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter creates a [Printer] writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a [Printer] writing to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		box:   r.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 2),
		title: r.NewStyle().Bold(true),
		step:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("11")),
		muted: r.NewStyle().Faint(true),
	}
}

// Header prints a boxed title with optional detail lines.
func (p *Printer) Header(title string, lines ...string) {
	body := p.title.Render(title)
	if len(lines) > 0 {
		body += "\n" + strings.Join(lines, "\n")
	}
	fmt.Fprintln(p.w, p.box.Render(body))
}

// StepStart announces stage stepIndex (1-based) of totalSteps.
func (p *Printer) StepStart(stepIndex, totalSteps int, name string) {
	fmt.Fprintf(p.w, "\n%s\n", p.step.Render(fmt.Sprintf("[%d/%d] %s", stepIndex, totalSteps, name)))
}

// Line prints a plain line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// OK prints a success line.
func (p *Printer) OK(format string, args ...any) {
	fmt.Fprintln(p.w, p.ok.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Fail prints a failure line.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintln(p.w, p.fail.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warn.Render("! "+fmt.Sprintf(format, args...)))
}

// Tools prints one row per located (or missing) executable.
func (p *Printer) Tools(results []tool.Availability) {
	for _, r := range results {
		if r.Found() {
			p.OK("%-12s %s", r.Name, p.muted.Render(r.Path))
		} else {
			p.Fail("%-12s not found", r.Name)
		}
	}
}

// Row is one line of a run or batch summary table.
type Row struct {
	Name     string
	Status   string
	Duration time.Duration
	Detail   string
}

// Summary prints a boxed table of rows with an overall verdict and total time.
func (p *Printer) Summary(title string, success bool, rows []Row, total time.Duration) {
	verdict := p.ok.Render("✓ " + title + " COMPLETE")
	if !success {
		verdict = p.fail.Render("✗ " + title + " FAILED")
	}

	lines := make([]string, 0, len(rows)+2)
	for _, r := range rows {
		line := fmt.Sprintf("%s %-20s %10s", statusMark(r.Status), r.Name, r.Duration.Round(time.Millisecond))
		if r.Detail != "" {
			line += "  " + r.Detail
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", fmt.Sprintf("Total: %s", total.Round(time.Millisecond)))

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.box.Render(verdict+"\n"+strings.Join(lines, "\n")))
}

func statusMark(status string) string {
	switch status {
	case "ok":
		return "✓"
	case "failed":
		return "✗"
	case "skipped":
		return "↷"
	default:
		return "○"
	}
}
