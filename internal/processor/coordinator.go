package processor

import (
	"context"
	"errors"
	"io"

	"github.com/linuxmatters/drtool/internal/decode"
)

// AnalyzeFile runs the full measurement pipeline over dec: optional edge
// trimming, per-channel windowed RMS/peak tracking, optional silence
// filtering, DR calculation, and track-level aggregation.
//
// The decode path is chosen purely from what dec reports about itself:
// a stateful codec (dec.StatefulCodec() == true) is always pulled
// serially through NextChunk; a decoder that additionally implements
// decode.RandomAccessDecoderFactory and reports StatefulCodec() == false
// is run through ParallelDecoder instead. Nothing here inspects a codec
// name.
func AnalyzeFile(ctx context.Context, dec decode.StreamingDecoder, cfg *Config) (TrackResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	format := dec.Format()
	channelCount := int(format.ChannelCount)
	if channelCount <= 0 {
		return TrackResult{}, &decode.Error{Kind: decode.KindInvalidInput, Err: errors.New("decoder reported zero channels")}
	}

	analyzers := make([]*WindowRmsAnalyzer, channelCount)
	for i := range analyzers {
		analyzers[i] = NewWindowRmsAnalyzer(format.SampleRateHz)
	}

	var trimmer *EdgeTrimmer
	if cfg.TrimEdges {
		trimmer = NewEdgeTrimmer(cfg.Trim, format.SampleRateHz, channelCount)
	}

	feed := func(chunk []float32) {
		if trimmer != nil {
			chunk = trimmer.Process(chunk)
		}
		if len(chunk) == 0 {
			return
		}
		for ch := 0; ch < channelCount; ch++ {
			analyzers[ch].ProcessStrided(chunk, channelCount, ch)
		}
	}

	var (
		skippedPackets uint64
		runErr         error
	)

	if rad, ok := dec.(decode.RandomAccessDecoderFactory); ok && !dec.StatefulCodec() && cfg.ParallelThreads > 1 {
		debugf("decoding %s: parallel path, %d worker(s)", format.CodecName, cfg.ParallelThreads)
		pd := NewParallelDecoder(rad, cfg.ParallelThreads, cfg.ChunkBufferSize)
		for chunk := range pd.Run(ctx) {
			if chunk.Err != nil {
				continue
			}
			feed(chunk.Samples)
		}
		skippedPackets = pd.Stats().SkippedPackets
	} else {
		debugf("decoding %s: serial path (statefulCodec=%t)", format.CodecName, dec.StatefulCodec())
		skippedPackets, runErr = runSerial(ctx, dec, feed)
		if runErr != nil {
			return TrackResult{}, runErr
		}
	}

	if trimmer != nil {
		feed(trimmer.Flush())
	}

	results := make([]ChannelDrResult, channelCount)
	calc := &DrCalculator{ClipThreshold: cfg.ClipThreshold}
	silence := (*SilenceFilter)(nil)
	if cfg.FilterSilence {
		silence = NewSilenceFilter(cfg.Silence)
	}

	for ch := 0; ch < channelCount; ch++ {
		windowRMS, peak1, peak2, sampleCount := analyzers[ch].Finalize()

		var excluded []bool
		if silence != nil {
			excluded = silence.Mark(windowRMS)
		}

		result := calc.Compute(windowRMS, excluded, peak1, peak2)
		result.SampleCount = sampleCount
		results[ch] = result
	}

	aggregate := Aggregate(results, format.LFEIndices, cfg.ExcludeLFE)

	tr := TrackResult{
		Channels:        results,
		Aggregate:       aggregate,
		PartialAnalysis: skippedPackets > 0,
		SkippedPackets:  skippedPackets,
	}
	if trimmer != nil {
		tr.LeadingTrimmedFrames = trimmer.LeadingTrim
		tr.TrailingTrimmedFrames = trimmer.TrailingTrim
	}

	return tr, nil
}

// runSerial pulls chunks one at a time through NextChunk. A decode-kind
// error on a single chunk is counted and skipped rather than aborting
// the whole track; every other error propagates.
func runSerial(ctx context.Context, dec decode.StreamingDecoder, feed func([]float32)) (skipped uint64, err error) {
	for {
		chunk, err := dec.NextChunk(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return skipped, nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return skipped, err
			}
			var de *decode.Error
			if errors.As(err, &de) && de.Kind == decode.KindDecode {
				skipped++
				debugf("serial: chunk skipped: %v", de)
				continue
			}
			return skipped, err
		}
		feed(chunk)
	}
}
