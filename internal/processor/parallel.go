package processor

import (
	"context"
	"sync"

	"github.com/linuxmatters/drtool/internal/decode"
)

// parallelState tracks where ParallelDecoder's run is.
type parallelState int

const (
	parallelDecoding parallelState = iota
	parallelFlushing
	parallelCompleted
)

// ParallelDecoder fans chunk decoding out across a fixed worker pool and
// restores presentation order before handing chunks to the caller, so a
// stateless-codec decoder isn't forced through NextChunk's
// one-chunk-at-a-time serial path. It is never used against
// a StatefulCodec() decoder; AnalyzeFile checks that before construction.
//
// Each worker gets its own decoder instance, built from lead via
// RandomAccessDecoderFactory.Clone, so every decoder stays thread-local
// and constructed exactly once per worker. A WAV decoder's DecodeChunk
// does an unsynchronized seek+read, so sharing one instance
// across worker goroutines would race.
type ParallelDecoder struct {
	lead    decode.RandomAccessDecoderFactory
	workers int
	bufSize int

	out   chan decode.SequencedChunk
	state parallelState
	mu    sync.Mutex

	stats decode.ParallelStats
}

// NewParallelDecoder builds a decoder that processes lead's chunks with
// workers goroutines (worker 0 reuses lead directly; the rest each clone
// their own instance), buffering up to bufSize reordered chunks before
// applying backpressure on the producer side.
func NewParallelDecoder(lead decode.RandomAccessDecoderFactory, workers, bufSize int) *ParallelDecoder {
	if workers < 1 {
		workers = 1
	}
	if bufSize < 1 {
		bufSize = 1
	}
	return &ParallelDecoder{
		lead:    lead,
		workers: workers,
		bufSize: bufSize,
		out:     make(chan decode.SequencedChunk, bufSize),
	}
}

// Run launches the worker pool and the reorder goroutine and returns
// without waiting for them (only the chunk-count probe, when ChunkCount
// is unknown, runs before it returns). The returned channel delivers
// chunks strictly in sequence order; it is closed when decoding
// completes (successfully or not).
func (p *ParallelDecoder) Run(ctx context.Context) <-chan decode.SequencedChunk {
	p.mu.Lock()
	p.state = parallelDecoding
	p.mu.Unlock()

	total, known := p.lead.ChunkCount()
	if !known {
		// Fall back to a conservative probe: decode sequentially through
		// DecodeChunk until it errors, counting as we go. This keeps the
		// worker pool meaningful even when the container omitted a
		// frame/sample count.
		total = p.probeChunkCount(ctx, p.lead)
	}

	jobs := make(chan uint64, p.workers*2)
	results := make(chan decode.SequencedChunk, p.workers*2)

	var wg sync.WaitGroup
	wg.Add(1)
	go p.worker(ctx, p.lead, jobs, results, &wg)
	for w := 1; w < p.workers; w++ {
		wg.Add(1)
		go p.clonedWorker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i := uint64(0); i < total; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	go p.reorder(ctx, total, results)

	return p.out
}

func (p *ParallelDecoder) probeChunkCount(ctx context.Context, dec decode.RandomAccessDecoder) uint64 {
	var i uint64
	for {
		if _, err := dec.DecodeChunk(ctx, i); err != nil {
			return i
		}
		i++
	}
}

// clonedWorker builds its own decoder instance via lead.Clone before
// pulling jobs, so it never touches lead's (or any sibling worker's)
// read cursor. If Clone fails, every job this worker would have taken
// is reported as a failed chunk so the reorder stage still accounts for
// every sequence number.
func (p *ParallelDecoder) clonedWorker(ctx context.Context, jobs <-chan uint64, results chan<- decode.SequencedChunk, wg *sync.WaitGroup) {
	defer wg.Done()
	dec, err := p.lead.Clone()
	if err != nil {
		debugf("parallel: worker clone failed: %v", err)
		for idx := range jobs {
			p.mu.Lock()
			p.stats.SkippedPackets++
			p.mu.Unlock()
			select {
			case results <- decode.SequencedChunk{Seq: idx, Err: err}:
			case <-ctx.Done():
				return
			}
		}
		return
	}
	defer dec.Close()
	p.decodeJobs(ctx, dec, jobs, results)
}

func (p *ParallelDecoder) worker(ctx context.Context, dec decode.RandomAccessDecoder, jobs <-chan uint64, results chan<- decode.SequencedChunk, wg *sync.WaitGroup) {
	defer wg.Done()
	p.decodeJobs(ctx, dec, jobs, results)
}

func (p *ParallelDecoder) decodeJobs(ctx context.Context, dec decode.RandomAccessDecoder, jobs <-chan uint64, results chan<- decode.SequencedChunk) {
	for idx := range jobs {
		samples, err := dec.DecodeChunk(ctx, idx)
		if err != nil {
			p.mu.Lock()
			p.stats.SkippedPackets++
			p.mu.Unlock()
			debugf("parallel: chunk %d failed: %v", idx, err)
		}
		select {
		case results <- decode.SequencedChunk{Seq: idx, Samples: samples, Err: err}:
		case <-ctx.Done():
			return
		}
	}
}

// reorder buffers out-of-order worker results and releases them to p.out
// strictly in sequence order, never holding more than one pending chunk
// per not-yet-ready index.
func (p *ParallelDecoder) reorder(ctx context.Context, total uint64, results <-chan decode.SequencedChunk) {
	defer close(p.out)

	pending := make(map[uint64]decode.SequencedChunk)
	next := uint64(0)

	flush := func() bool {
		for {
			chunk, ok := pending[next]
			if !ok {
				return true
			}
			delete(pending, next)
			select {
			case p.out <- chunk:
			case <-ctx.Done():
				return false
			}
			next++
		}
	}

	for chunk := range results {
		pending[chunk.Seq] = chunk
		if !flush() {
			return
		}
		if next >= total {
			break
		}
	}
	flush()

	p.mu.Lock()
	p.state = parallelCompleted
	p.mu.Unlock()
}

// Stats reports what the worker pool has observed so far. Safe to call
// concurrently with Run.
func (p *ParallelDecoder) Stats() decode.ParallelStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
