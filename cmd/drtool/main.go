package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/linuxmatters/drtool/internal/audio/mp3"
	"github.com/linuxmatters/drtool/internal/audio/opus"
	"github.com/linuxmatters/drtool/internal/audio/wav"
	"github.com/linuxmatters/drtool/internal/cli"
	"github.com/linuxmatters/drtool/internal/decode"
	"github.com/linuxmatters/drtool/internal/processor"
	"github.com/linuxmatters/drtool/internal/report"
	"github.com/linuxmatters/drtool/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "0.1.0")
var version = "dev"

// process exit codes
const (
	exitSuccess       = 0
	exitInvalidInput  = 1
	exitDecodeFail    = 2
	exitNoneSupported = 3
)

// CLI defines the command-line interface
type CLI struct {
	Version bool `short:"v" help:"Show version information"`
	Debug   bool `short:"d" help:"Enable debug logging to drtool-debug.log"`

	ParallelThreads int  `help:"Worker count on the parallel decode path (1-16)" default:"4"`
	ParallelBatch   int  `help:"Output-channel depth on the parallel decode path (1-256)" default:"64"`
	ParallelFiles   int  `help:"Number of files to scan concurrently" default:"2"`
	NoParallelFiles bool `help:"Disable multi-file concurrency (equivalent to --parallel-files=1)"`
	Serial          bool `help:"Force the serial decode path, even for parallel-eligible containers"`

	TrimEdges  bool    `help:"Trim leading/trailing silence before measurement"`
	TrimDB     float64 `help:"Trim threshold in dBFS (-120 to 0)" default:"-60"`
	TrimMinRun int     `name:"trim-min-run" help:"Minimum silence run length in ms for an edge to be trimmed (50-2000)" default:"60"`

	FilterSilence bool    `help:"Exclude quiet windows from the top-20%% RMS candidate set"`
	FilterDB      float64 `help:"Silence-filter threshold in dBFS (-120 to 0)" default:"-70"`

	ExcludeLFE  bool `help:"Exclude LFE-tagged channels from the aggregate" default:"true" negatable:""`
	ShowRMSPeak bool `help:"Include a per-channel RMS/peak diagnostics table"`

	Output string `help:"Write the report to this path instead of stdout"`

	Files []string `arg:"" name:"files" help:"Audio files to scan (WAV, MP3, Opus)" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("drtool"),
		kong.Description("Dynamic range measurement for WAV, MP3, and Opus"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(exitSuccess)
	}

	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(exitInvalidInput)
	}

	if err := validateFlags(cliArgs); err != nil {
		cli.PrintError(err.Error())
		os.Exit(exitInvalidInput)
	}

	var debugLog *os.File
	if cliArgs.Debug {
		debugLog, _ = os.Create("drtool-debug.log")
		defer debugLog.Close()
	}
	processor.DebugLog = func(format string, args ...interface{}) {
		if debugLog != nil {
			fmt.Fprintf(debugLog, format+"\n", args...)
		}
	}

	cfg := buildConfig(cliArgs)

	var out *os.File
	if cliArgs.Output != "" {
		var err error
		out, err = os.Create(cliArgs.Output)
		if err != nil {
			cli.PrintError(fmt.Sprintf("creating %s: %v", cliArgs.Output, err))
			os.Exit(exitInvalidInput)
		}
		defer out.Close()
	}

	useTUI := out == nil && isatty.IsTerminal(os.Stdout.Fd())

	var exitCode int
	if useTUI {
		exitCode = runWithTUI(cliArgs, cfg)
	} else {
		exitCode = runPlain(cliArgs, cfg, out)
	}

	os.Exit(exitCode)
}

// validateFlags checks each flag's documented numeric range.
func validateFlags(c *CLI) error {
	switch {
	case c.ParallelThreads < 1 || c.ParallelThreads > 16:
		return fmt.Errorf("--parallel-threads must be in [1,16], got %d", c.ParallelThreads)
	case c.ParallelBatch < 1 || c.ParallelBatch > 256:
		return fmt.Errorf("--parallel-batch must be in [1,256], got %d", c.ParallelBatch)
	case c.TrimDB < -120 || c.TrimDB > 0:
		return fmt.Errorf("--trim-db must be in [-120,0], got %v", c.TrimDB)
	case c.TrimMinRun < 50 || c.TrimMinRun > 2000:
		return fmt.Errorf("--trim-min-run must be in [50,2000], got %d", c.TrimMinRun)
	case c.FilterDB < -120 || c.FilterDB > 0:
		return fmt.Errorf("--filter-db must be in [-120,0], got %v", c.FilterDB)
	}
	return nil
}

func buildConfig(c *CLI) *processor.Config {
	cfg := processor.DefaultConfig()
	cfg.ExcludeLFE = c.ExcludeLFE
	cfg.TrimEdges = c.TrimEdges
	cfg.Trim = processor.EdgeTrimmerConfig{
		ThresholdDB:  c.TrimDB,
		MinRunMs:     c.TrimMinRun,
		HysteresisMs: processor.DefaultEdgeTrimmerConfig().HysteresisMs,
	}
	cfg.FilterSilence = c.FilterSilence
	cfg.Silence = processor.SilenceFilterConfig{ThresholdDB: c.FilterDB}
	cfg.ParallelThreads = c.ParallelThreads
	if c.Serial {
		cfg.ParallelThreads = 1
	}
	cfg.ChunkBufferSize = c.ParallelBatch
	return cfg
}

// openDecoder selects a decoder by file extension: only this CLI layer
// knows about file extensions, keeping internal/processor free of any
// codec-name inspection — it hands the core nothing but the resulting
// decode.StreamingDecoder.
func openDecoder(path string) (decode.StreamingDecoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Open(path)
	case ".mp3":
		return mp3.Open(path)
	case ".opus", ".ogg":
		return opus.Open(path)
	default:
		return nil, decode.Newf(decode.KindFormatUnsupported, "unrecognized extension %q", filepath.Ext(path))
	}
}

// scanOutcome distinguishes "no decoder for this extension" from every
// other failure, since only the former contributes to the
// no-supported-files exit code.
type scanOutcome struct {
	unsupported bool
}

func scanFile(ctx context.Context, path string, cfg *processor.Config, progress func(float64)) (processor.TrackResult, decode.AudioFormat, scanOutcome, error) {
	dec, err := openDecoder(path)
	if err != nil {
		outcome := scanOutcome{}
		if de, ok := asDecodeError(err); ok && de.Kind == decode.KindFormatUnsupported {
			outcome.unsupported = true
		}
		return processor.TrackResult{}, decode.AudioFormat{}, outcome, err
	}
	defer dec.Close()

	format := dec.Format()

	if progress != nil {
		progressCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go reportProgress(progressCtx, dec, progress)
	}

	result, err := processor.AnalyzeFile(ctx, dec, cfg)
	if err != nil {
		return processor.TrackResult{}, format, scanOutcome{}, err
	}
	return result, format, scanOutcome{}, nil
}

func asDecodeError(err error) (*decode.Error, bool) {
	de, ok := err.(*decode.Error)
	return de, ok
}

// reportProgress polls dec.Progress() until ctx is done, feeding it to
// progress. Best-effort: some decoders report 0 throughout (unknown
// stream length) and this simply never advances the bar.
func reportProgress(ctx context.Context, dec decode.StreamingDecoder, progress func(float64)) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			progress(float64(dec.Progress()))
		}
	}
}

// fileOutcome is one file's scan result, gathered by runPlain's worker
// pool and printed back in argument order once every worker is done.
type fileOutcome struct {
	path    string
	format  decode.AudioFormat
	result  processor.TrackResult
	outcome scanOutcome
	err     error
}

// runPlain scans the file list through a bounded worker pool sized by
// --parallel-files/--no-parallel-files, then writes every report to w
// in the original argument order — used for non-TTY/batch/CI runs and
// whenever --output is given. Concurrency here is across whole files;
// each individual file still goes through AnalyzeFile's own serial/
// parallel chunk routing independently.
func runPlain(cliArgs *CLI, cfg *processor.Config, out *os.File) int {
	w := io.Writer(os.Stdout)
	if out != nil {
		w = out
	}

	concurrency := cliArgs.ParallelFiles
	if cliArgs.NoParallelFiles || concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]fileOutcome, len(cliArgs.Files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				path := cliArgs.Files[idx]
				result, format, outcome, err := scanFile(context.Background(), path, cfg, nil)
				outcomes[idx] = fileOutcome{path: path, format: format, result: result, outcome: outcome, err: err}
			}
		}()
	}
	for i := range cliArgs.Files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var (
		decodeFailures int
		unsupported    int
		succeeded      int
	)

	for _, fo := range outcomes {
		if fo.err != nil {
			if fo.outcome.unsupported {
				unsupported++
			} else {
				decodeFailures++
			}
			cli.PrintError(fmt.Sprintf("%s: %v", filepath.Base(fo.path), fo.err))
			continue
		}
		succeeded++

		if err := report.Generate(w, report.Data{
			InputPath:   fo.path,
			Format:      fo.format,
			Result:      fo.result,
			ExcludeLFE:  cfg.ExcludeLFE,
			ShowRMSPeak: cliArgs.ShowRMSPeak,
		}); err != nil {
			cli.PrintError(fmt.Sprintf("%s: writing report: %v", filepath.Base(fo.path), err))
		}
		fmt.Fprintln(w, strings.Repeat("-", 60))
	}

	return exitCodeFor(len(cliArgs.Files), succeeded, unsupported, decodeFailures)
}

// runWithTUI drives the Bubbletea progress display while a background
// goroutine walks the file list: a tea.Program started in the
// foreground, a goroutine feeding it FileStart/Progress/FileComplete/
// AllComplete messages via p.Send.
func runWithTUI(cliArgs *CLI, cfg *processor.Config) int {
	model := ui.NewModel(cliArgs.Files)
	p := tea.NewProgram(model, tea.WithAltScreen())

	var (
		decodeFailures int
		unsupported    int
		succeeded      int
	)

	go func() {
		for i, path := range cliArgs.Files {
			p.Send(ui.FileStartMsg{FileIndex: i, FileName: path})

			result, _, outcome, err := scanFile(context.Background(), path, cfg, func(f float64) {
				p.Send(ui.ProgressMsg{Progress: f})
			})

			if err != nil {
				if outcome.unsupported {
					unsupported++
				} else {
					decodeFailures++
				}
				p.Send(ui.FileCompleteMsg{FileIndex: i, Error: err})
				continue
			}
			succeeded++
			p.Send(ui.FileCompleteMsg{FileIndex: i, Result: &result})
		}
		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		return exitInvalidInput
	}

	return exitCodeFor(len(cliArgs.Files), succeeded, unsupported, decodeFailures)
}

func exitCodeFor(total, succeeded, unsupported, decodeFailures int) int {
	if succeeded == 0 && unsupported == total {
		return exitNoneSupported
	}
	if decodeFailures > 0 {
		return exitDecodeFail
	}
	return exitSuccess
}
