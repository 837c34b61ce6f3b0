package assembly

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ChartContigs caps how many of the longest contigs the length chart shows.
const ChartContigs = 50

// RenderLengthChart writes an HTML bar chart of the longest contigs, longest first.
func RenderLengthChart(w io.Writer, title string, lengths []int) error {
	if len(lengths) == 0 {
		return fmt.Errorf("no contigs to chart")
	}
	desc := append([]int(nil), lengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(desc)))
	if len(desc) > ChartContigs {
		desc = desc[:ChartContigs]
	}

	labels := make([]string, len(desc))
	data := make([]opts.BarData, len(desc))
	for i, l := range desc {
		labels[i] = fmt.Sprintf("#%d", i+1)
		data[i] = opts.BarData{Value: l}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros, PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: Compute(lengths).String()}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Contig"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Length (bp)"}),
	)
	bar.SetXAxis(labels).AddSeries("length", data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render contig chart: %w", err)
	}
	return nil
}
