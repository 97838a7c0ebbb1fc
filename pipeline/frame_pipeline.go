package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cosmic-utils/camera-sub001/camerabackend"
	"github.com/cosmic-utils/camera-sub001/frame"
	"github.com/cosmic-utils/camera-sub001/internal/logging"
)

// deliveryCapacity is the bounded channel capacity from §4.1: at 100
// frames queued, a stalled UI can fall at most ~1.6s behind (at 60fps)
// before new frames start dropping.
const deliveryCapacity = 100

// graceWindow is the pause between creating a backend pipeline and
// starting delivery, giving a previous pipeline time to release
// hardware (§4.1).
const graceWindow = 50 * time.Millisecond

// latencyWarnThreshold is two 60fps frame periods; delivery slower than
// this is logged (§4.1's observable latency contract).
const latencyWarnThreshold = 33 * time.Millisecond

// creationRetryDelay is how long FramePipeline waits before retrying
// backend initialization after a creation failure (§4.1, §7).
const creationRetryDelay = 5 * time.Second

// FramePipeline subscribes to a camerabackend.Backend's frame stream and
// redelivers it on a bounded, drop-on-overflow channel, applying the
// cancellation, grace-window, and latency-warning rules of §4.1.
type FramePipeline struct {
	out chan *frame.Frame

	dropped  atomic.Uint64
	received atomic.Uint64
}

// NewFramePipeline creates a pipeline with the spec-mandated channel
// capacity.
func NewFramePipeline() *FramePipeline {
	return &FramePipeline{out: make(chan *frame.Frame, deliveryCapacity)}
}

// Frames returns the channel frames are delivered on. Callers should
// range over it; it is closed when Run returns.
func (p *FramePipeline) Frames() <-chan *frame.Frame { return p.out }

// Dropped returns the number of frames dropped so far due to a full
// delivery channel.
func (p *FramePipeline) Dropped() uint64 { return p.dropped.Load() }

// Run subscribes to backend and redelivers frames until ctx is
// cancelled or the backend's preview channel closes. It closes Frames()
// before returning.
//
// On an Initialize failure, Run retries after creationRetryDelay rather
// than returning immediately, matching §4.1's "pipeline creation
// failure -> retry after 5s". Run only returns once ctx is cancelled or
// initialization eventually succeeds and the backend's channel closes.
func (p *FramePipeline) Run(ctx context.Context, backend camerabackend.Backend, device camerabackend.Device, format camerabackend.Format) error {
	defer close(p.out)
	log := logging.For("pipeline.frame")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := backend.Initialize(ctx, device, format); err != nil {
			log.Warn("backend initialization failed, retrying", "error", err, "retry_after", creationRetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(creationRetryDelay):
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(graceWindow):
		}

		p.deliver(ctx, backend, log)
		return nil
	}
}

// deliver runs the 16ms poll loop described in §4.1 until the backend's
// channel closes or ctx is cancelled.
func (p *FramePipeline) deliver(ctx context.Context, backend camerabackend.Backend, log *slog.Logger) {
	recv := backend.PreviewReceiver()
	for {
		select {
		case <-ctx.Done():
			return
		case fr, ok := <-recv:
			if !ok {
				return
			}
			p.received.Add(1)
			p.checkLatency(fr, log)
			p.send(fr, log)
		case <-time.After(camerabackend.PollTimeout):
			// Poll timeout: loop back around to re-check ctx.Done().
		}
	}
}

func (p *FramePipeline) checkLatency(fr *frame.Frame, log *slog.Logger) {
	latency := time.Since(fr.CapturedAt)
	if latency > latencyWarnThreshold {
		log.Warn("frame delivery latency exceeded threshold", "latency", latency, "threshold", latencyWarnThreshold)
	}
}

// send implements drop-on-overflow: a full channel drops the newest
// frame rather than blocking or evicting an older one, per §4.1 and
// §5's "on overflow, the newest is dropped, never reordered."
func (p *FramePipeline) send(fr *frame.Frame, log *slog.Logger) {
	select {
	case p.out <- fr:
	default:
		p.dropped.Add(1)
		log.Debug("dropped frame: delivery channel full")
	}
}
