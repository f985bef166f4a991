package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jrsteele09/go-blog-client/cli/output"
)

// printStats renders the counters gathered during this invocation
func (c *cliContext) printStats(app *App) error {
	if app.Registry == nil {
		return nil
	}
	families, err := app.Registry.Gather()
	if err != nil {
		return fmt.Errorf("[cli printStats] %w", err)
	}

	table := output.NewTable(c.printer.Out(), "METRIC", "LABELS", "VALUE")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)

			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprintf("%g", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("%d obs, %.3fs", h.GetSampleCount(), h.GetSampleSum())
			default:
				continue
			}
			table.AddRow(mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	if table.Len() == 0 {
		return nil
	}
	c.printer.Header("Client metrics")
	return table.Render()
}
