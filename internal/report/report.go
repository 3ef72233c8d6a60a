package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/drtool/internal/decode"
	"github.com/linuxmatters/drtool/internal/processor"
)

// Data bundles everything one file's report needs: the path it came
// from, its decoded format, the measurement result, and whether LFE
// exclusion was actually in effect for this run (Aggregate.ExcludedLFE
// alone can't distinguish "no LFE channels" from "excluded 0 of them").
type Data struct {
	InputPath   string
	Format      decode.AudioFormat
	Result      processor.TrackResult
	ExcludeLFE  bool
	ShowRMSPeak bool
}

// localDRLabel is the non-English label placed alongside "Official DR
// Value" per the reference tool's bilingual convention; French was
// chosen per the Open Question decision recorded in DESIGN.md, since no
// original-language source text survived distillation.
const localDRLabel = "Valeur DR officielle"

// Generate writes the textual report for one file to w.
func Generate(w io.Writer, data Data) error {
	tr := data.Result
	agg := tr.Aggregate

	fmt.Fprintf(w, "File: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(w, "Format: %s, %d Hz, %d channel(s)\n\n", data.Format.CodecName, data.Format.SampleRateHz, data.Format.ChannelCount)

	if agg.OfficialDR == nil {
		fmt.Fprintln(w, "Official DR Value: n/a (no non-silent channels)")
	} else {
		fmt.Fprintf(w, "Official DR Value: DR%d\n", *agg.OfficialDR)
		fmt.Fprintf(w, "Precise DR Value: %.2f dB\n", *agg.PreciseDR)
		fmt.Fprintf(w, "%s : DR%d\n", localDRLabel, *agg.OfficialDR)
	}
	fmt.Fprintln(w)

	if tr.PartialAnalysis {
		fmt.Fprintf(w, "Warning: partial analysis, %d chunk(s) skipped on decode error\n", tr.SkippedPackets)
	}
	if agg.BoundaryRisk != nil {
		br := agg.BoundaryRisk
		fmt.Fprintf(w, "Warning: boundary risk (%s, %s side, %.3f dB from a half-integer) — Official DR may differ by 1 from a reference measurement\n", br.Level, br.Direction, br.DistanceDB)
	}
	if tr.LeadingTrimmedFrames > 0 || tr.TrailingTrimmedFrames > 0 {
		fmt.Fprintf(w, "Trimmed: %d leading / %d trailing frame(s)\n", tr.LeadingTrimmedFrames, tr.TrailingTrimmedFrames)
	}
	if agg.ExcludedSilent > 0 || agg.ExcludedLFE > 0 {
		fmt.Fprintf(w, "Excluded from aggregate: %d silent, %d LFE\n", agg.ExcludedSilent, agg.ExcludedLFE)
	}
	fmt.Fprintln(w)

	lfe := make(map[int]bool, len(data.Format.LFEIndices))
	if data.ExcludeLFE {
		for _, idx := range data.Format.LFEIndices {
			lfe[idx] = true
		}
	}

	for i, ch := range tr.Channels {
		if ch.Silent {
			fmt.Fprintf(w, "DR channel %d: silent, excluded\n", i+1)
			continue
		}
		suffix := ""
		if lfe[i] {
			suffix = " (LFE, excluded from aggregate)"
		}
		fmt.Fprintf(w, "DR channel %d: %.2f dB%s\n", i+1, ch.DrValueDB, suffix)
	}

	if data.ShowRMSPeak {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rmsPeakTable(tr.Channels).String())
	}

	return nil
}

// rmsPeakTable builds the --show-rms-peak diagnostics table: top-20%
// RMS, primary peak, and secondary peak per channel, each in dBFS.
func rmsPeakTable(channels []processor.ChannelDrResult) *MetricTable {
	t := NewMetricTable(len(channels))

	rmsValues := make([]string, len(channels))
	peak1Values := make([]string, len(channels))
	peak2Values := make([]string, len(channels))

	for i, ch := range channels {
		if ch.Silent {
			rmsValues[i] = MissingValue
			peak1Values[i] = MissingValue
			peak2Values[i] = MissingValue
			continue
		}
		rmsValues[i] = formatLinearAsDB(ch.RmsLinear, 2)
		peak1Values[i] = formatLinearAsDB(float64(ch.PrimaryPeak), 2)
		peak2Values[i] = formatLinearAsDB(float64(ch.SecondaryPeak), 2)
	}

	t.AddRow("RMS (top 20%)", rmsValues, "dBFS")
	t.AddRow("Peak (1st)", peak1Values, "dBFS")
	t.AddRow("Peak (2nd)", peak2Values, "dBFS")

	return t
}

// Summary renders the one-line Official/Precise DR summary used by
// the TUI's file list and completion summary.
func Summary(result processor.TrackResult) string {
	agg := result.Aggregate
	if agg.OfficialDR == nil {
		return "DR: n/a (all channels silent)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Official DR%d (precise %.2f dB)", *agg.OfficialDR, *agg.PreciseDR)
	if result.PartialAnalysis {
		fmt.Fprintf(&b, " — partial (%d chunk(s) skipped)", result.SkippedPackets)
	}
	if agg.BoundaryRisk != nil {
		w := agg.BoundaryRisk
		fmt.Fprintf(&b, " — boundary risk: %s (%s, ±%.3f dB)", w.Level, w.Direction, w.DistanceDB)
	}
	return b.String()
}
