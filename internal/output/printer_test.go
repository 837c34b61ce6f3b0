package output

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sra2mito/internal/tool"
)

func TestPrinter_Lines(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)

	p.Header("sra2mito: SRR000001", "Output: ./out")
	p.StepStart(2, 5, "acquire")
	p.Line("plain %d", 7)
	p.OK("done")
	p.Fail("broke with %d", 2)
	p.Warn("careful")

	out := buf.String()
	assert.Contains(t, out, "sra2mito: SRR000001")
	assert.Contains(t, out, "Output: ./out")
	assert.Contains(t, out, "[2/5] acquire")
	assert.Contains(t, out, "plain 7")
	assert.Contains(t, out, "✓ done")
	assert.Contains(t, out, "✗ broke with 2")
	assert.Contains(t, out, "! careful")
	assert.NotContains(t, out, "\x1b[", "buffers get no ANSI escapes")
}

func TestPrinter_Tools(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinterWithWriter(buf)

	p.Tools([]tool.Availability{
		{Name: "fastp", Path: "/usr/bin/fastp"},
		{Name: "seqtk", Err: errors.New("missing")},
	})

	assert.Contains(t, buf.String(), "/usr/bin/fastp")
	assert.Contains(t, buf.String(), "seqtk")
	assert.Contains(t, buf.String(), "not found")
}

func TestPrinter_Summary(t *testing.T) {
	tests := []struct {
		name    string
		success bool
		want    string
	}{
		{name: "success", success: true, want: "RUN COMPLETE"},
		{name: "failure", success: false, want: "RUN FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			p := NewPrinterWithWriter(buf)

			p.Summary("RUN", tt.success, []Row{
				{Name: "trim", Status: "ok", Duration: 1500 * time.Millisecond},
				{Name: "assemble", Status: "failed", Detail: "exit code 2"},
			}, 3*time.Second)

			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "trim")
			assert.Contains(t, out, "exit code 2")
			assert.Contains(t, out, "Total: 3s")
		})
	}
}

func TestStatusMark(t *testing.T) {
	assert.Equal(t, "✓", statusMark("ok"))
	assert.Equal(t, "✗", statusMark("failed"))
	assert.Equal(t, "↷", statusMark("skipped"))
	assert.Equal(t, "○", statusMark("pending"))
}
