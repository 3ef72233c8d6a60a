// Package report renders TrackResult values as the textual scan report:
// the bilingual Official/Precise DR summary, per-channel DR lines, and
// an optional per-channel RMS/peak diagnostics table for
// --show-rms-peak.
package report

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow is a single row of a MetricTable: one label, one
// pre-formatted value per channel column, and an optional unit shown
// after the last value.
type MetricRow struct {
	Label  string
	Values []string
	Unit   string
}

// MetricTable formats aligned columns for one metric per channel,
// e.g. RMS/Peak across every channel of a track.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// NewMetricTable builds a MetricTable with one header column per
// channel, labelled "Ch 1".."Ch N".
func NewMetricTable(channelCount int) *MetricTable {
	headers := make([]string, channelCount)
	for i := range headers {
		headers[i] = fmt.Sprintf("Ch %d", i+1)
	}
	return &MetricTable{Headers: headers}
}

// AddRow appends a row with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string) {
	t.Rows = append(t.Rows, MetricRow{Label: label, Values: values, Unit: unit})
}

// String renders the table with aligned columns: label left-aligned,
// values right-aligned per column, unit appended after the last value.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelWidth := 0
	for _, row := range t.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	unitWidth := 0
	for _, row := range t.Rows {
		if len(row.Unit) > unitWidth {
			unitWidth = len(row.Unit)
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))
		for i := range t.Headers {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}
		if unitWidth > 0 {
			sb.WriteString(row.Unit)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// MissingValue is the placeholder for an excluded or unmeasurable
// channel (silent, or NaN DR).
const MissingValue = "-"

// formatDB formats a dB value, with NaN/Inf (silent channels never
// enter Compute's DR formula with a finite result) shown as MissingValue.
func formatDB(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	format := fmt.Sprintf("%%.%df", decimals)
	return fmt.Sprintf(format, value)
}

// formatLinearAsDB converts a linear amplitude (0.0-1.0) to dBFS.
// Zero/negative amplitude (true digital silence) is shown as "-inf".
func formatLinearAsDB(value float64, decimals int) string {
	if value <= 0 || math.IsNaN(value) {
		return "-inf"
	}
	dB := 20.0 * math.Log10(value)
	format := fmt.Sprintf("%%.%df", decimals)
	return fmt.Sprintf(format, dB)
}
