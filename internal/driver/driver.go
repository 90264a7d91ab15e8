// Package driver implements the batch dispatch loop described in spec
// §4.5: read the input file in line-aligned chunks, fan each chunk out
// to a bounded pool of concurrent tasks that apply its operations to a
// Table, and periodically bring every participating goroutine to a
// barrier so a table resize can run with no lookup or insert in
// flight. It is shared by cmd/chainhash (striped) and
// cmd/chainhash-lockfree (lock-free); the variant is entirely a
// property of the *chainhash.Table passed in.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/riftlabs/chainhash"
	"github.com/riftlabs/chainhash/internal/barrier"
)

// MaxTaskPool bounds how many chunk-processing tasks may be dispatched
// in a single round before the driver forces a taskwait/barrier round,
// matching the original driver's MAX_TASK_POOL. It does not bound
// concurrency — that is numThreads' job, mirroring omp_set_num_threads
// sizing the team that executes dispatched tasks.
const MaxTaskPool = 256

// Run drives tbl to completion against r: it reads until r is
// exhausted, applying every 'I' and 'L' line to tbl, and collectively
// resizes tbl whenever a chain has reached the trigger depth.
// numThreads is the team size in both senses the reference driver uses
// it: it bounds how many chunk-processing tasks may run concurrently
// (an errgroup/semaphore pool sized to numThreads, standing in for the
// OpenMP team that executes dispatched tasks) and it is the resize
// barrier's party count and rehash partition count. speedTest, when
// true, skips the expected-value bookkeeping that RecordExpectedValue
// performs on 'L' lines (it is still a no-op on a Table built with
// Config.MetricsEnabled == false, but skipping the call entirely avoids
// the wasted lookup-comparison work, matching the original's own
// speed_test branch).
func Run(ctx context.Context, tbl *chainhash.Table, r io.Reader, numThreads int, speedTest bool) error {
	if numThreads < 1 {
		numThreads = 1
	}

	cr := newChunkReader(r, FileChunkSize)
	bar := barrier.New(numThreads)

	var mu sync.Mutex
	eof := false
	var dispatchErr error

	var wg sync.WaitGroup
	wg.Add(numThreads)
	for id := 0; id < numThreads; id++ {
		id := id
		go func() {
			defer wg.Done()
			for {
				if id == 0 {
					roundEOF, err := dispatchRound(ctx, tbl, cr, numThreads, speedTest)
					mu.Lock()
					eof = roundEOF
					if err != nil && dispatchErr == nil {
						dispatchErr = err
					}
					mu.Unlock()
				}

				bar.Wait() // taskwait + barrier: no insert/lookup is in flight past this point

				if tbl.ResizeNeeded() {
					tbl.Resize(id, numThreads, bar)
				}

				bar.Wait() // barrier: "VERY MUCH NEEDED" — the swapped-in table (if any) is visible to every goroutine before the next round

				mu.Lock()
				done := eof && !tbl.ResizeNeeded()
				mu.Unlock()
				if done {
					return
				}
			}
		}()
	}
	wg.Wait()
	return dispatchErr
}

// dispatchRound reads and dispatches chunks until the input is
// exhausted, the task pool fills, or a resize has become necessary —
// the same three exit conditions as the reference driver's inner
// dispatch loop — then waits for every dispatched task to finish
// (the taskwait). No more than numThreads chunks ever run concurrently,
// the same bound omp_set_num_threads(num_threads) places on the team
// that executes the reference driver's dispatched tasks.
func dispatchRound(ctx context.Context, tbl *chainhash.Table, cr *chunkReader, numThreads int, speedTest bool) (eof bool, err error) {
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(numThreads))

	dispatched := 0
	for {
		chunk, readErr := cr.next()
		if len(chunk) > 0 {
			if acquireErr := sem.Acquire(gctx, 1); acquireErr != nil {
				err = acquireErr
				break
			}
			dispatched++
			g.Go(func() error {
				defer sem.Release(1)
				processChunk(tbl, chunk, speedTest)
				return nil
			})
		}

		if readErr != nil { // always io.EOF: chunkReader treats a mid-stream read error as EOF too
			eof = true
			break
		}
		if dispatched >= MaxTaskPool-1 {
			break
		}
		if tbl.ResizeNeeded() {
			break
		}
	}

	if waitErr := g.Wait(); waitErr != nil && err == nil {
		err = waitErr
	}
	return eof, err
}

// processChunk applies every well-formed 'L' (lookup) or 'I' (insert)
// line in chunk to tbl. Lines with an unrecognized opcode, or that
// fail to parse, are silently skipped.
func processChunk(tbl *chainhash.Table, chunk []byte, speedTest bool) {
	for _, line := range bytes.Split(chunk, []byte("\n")) {
		op, key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		switch op {
		case 'L':
			got := tbl.Lookup(key)
			if !speedTest {
				tbl.RecordExpectedValue(got, value)
			}
		case 'I':
			tbl.Insert(key, value)
		}
	}
}

// FormatReport renders snap in the reference driver's own report
// format, one "key: value" line per metric.
func FormatReport(w io.Writer, snap chainhash.Snapshot) {
	fmt.Fprintf(w, "total_ops: %d\n", snap.TotalOps)
	fmt.Fprintf(w, "total_lookups: %d\n", snap.TotalLookups)
	fmt.Fprintf(w, "successful_lookups: %d\n", snap.SuccessfulLookups)
	fmt.Fprintf(w, "failed_lookups: %d\n", snap.MissedLookups)
	fmt.Fprintf(w, "total_inserts: %d\n", snap.TotalInserts)
	fmt.Fprintf(w, "failed_matches: %d\n", snap.FailedMatches)
}
