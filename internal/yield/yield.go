// Package yield implements the compositor-yield chunked-dispatch helpers.
// The burst alignment warp uses ChunkRows; Passes has no caller in this
// module, and the burst merge runs without yields. A monolithic GPU
// dispatch over a full frame stalls the display for its entire duration; breaking the work into row chunks
// and yielding between groups of chunks is what lets the windowing
// compositor preempt the low-priority compute queue.
package yield

import "context"

// ChunkRows splits [0, totalRows) into chunks of chunkSize rows and calls
// fn once per chunk with its [start, end) row range. After every yieldEvery
// chunks (and once at the end), it calls yield to let the caller hand
// control back to the compositor/scheduler before continuing. yield may be
// nil, in which case no explicit yield is performed (useful in tests).
//
// ChunkRows stops early and returns ctx.Err() if ctx is canceled between
// chunks; burst processing per spec has no cancellation once started, so
// callers on that path should pass context.Background().
func ChunkRows(ctx context.Context, totalRows, chunkSize, yieldEvery int, fn func(start, end int), yield func()) error {
	if chunkSize <= 0 {
		chunkSize = totalRows
	}
	if chunkSize <= 0 {
		return nil
	}
	if yieldEvery <= 0 {
		yieldEvery = 1
	}

	chunks := 0
	for start := 0; start < totalRows; start += chunkSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + chunkSize
		if end > totalRows {
			end = totalRows
		}
		fn(start, end)
		chunks++

		if chunks%yieldEvery == 0 && yield != nil {
			yield()
		}
	}
	if chunks%yieldEvery != 0 && yield != nil {
		yield()
	}
	return nil
}

// Passes runs fn once per pass (e.g. the four WOLA offset passes) and
// yields once per pass, matching "every 4-pass WOLA also yields once per
// pass" from the concurrency model.
func Passes(ctx context.Context, count int, fn func(pass int), yield func()) error {
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		fn(i)
		if yield != nil {
			yield()
		}
	}
	return nil
}
