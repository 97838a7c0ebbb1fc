package burst

import (
	"context"
	"errors"
	"fmt"

	"github.com/cosmic-utils/camera-sub001/internal/logging"
	"github.com/cosmic-utils/camera-sub001/internal/yield"
)

// rowChunkSize and yieldEvery are the GPU-responsiveness parameters
// named in §4.7: dispatches broken into 4-row chunks with a
// compositor-yield every 2 chunks.
const (
	rowChunkSize = 4
	yieldEvery   = 2
)

// Result is the final output of a burst capture: the merged,
// tone-mapped image plus per-frame alignment quality for diagnostics.
type Result struct {
	Width, Height int
	RGBA          []byte
	ReferenceIdx  int
	AlignQuality  []float64
}

// lowLightThreshold is the average normalized luminance below which the
// merge tile grid widens to 32px (§4.8).
const lowLightThreshold = 0.15

// ErrBurstMergeFailed is returned by Run when alignment or merge fails:
// a cancelled context or a panic inside either stage (the merged values
// are not otherwise checked). Per §7, callers should treat
// this as non-fatal and fall back to the reference frame rather than
// surface an error to the user.
var ErrBurstMergeFailed = errors.New("burst: merge failed")

// Run aligns and merges a captured burst of equal-sized RGBA frames,
// returning the tone-mapped result. On any internal failure during
// alignment or merge it returns (referenceFrameResult, ErrBurstMergeFailed)
// so the caller can still present an image to the user, per the burst
// pipeline's "failed burst yields the reference frame" policy.
func Run(ctx context.Context, frames [][]byte, width, height int, cfg Config, yieldFn func()) (Result, error) {
	log := logging.For("burst")
	if len(frames) == 0 {
		return Result{}, fmt.Errorf("burst: no frames supplied")
	}

	lumas := make([][]float32, len(frames))
	for i, f := range frames {
		lumas[i] = LuminanceBT601(f, width, height)
	}
	refIdx := SelectReference(lumas, width, height)
	refFrame := frames[refIdx]
	refLuma := lumas[refIdx]

	fallback := Result{
		Width:        width,
		Height:       height,
		RGBA:         refFrame,
		ReferenceIdx: refIdx,
	}

	merged, quality, err := alignAndMerge(ctx, frames, lumas, refFrame, refLuma, refIdx, width, height, cfg, yieldFn)
	if err != nil {
		log.Warn("burst merge failed, falling back to reference frame", "error", err)
		return fallback, ErrBurstMergeFailed
	}

	toned := ApplyToneMap(merged, width, height, ToneMapParams{
		ShadowBoost:   cfg.ShadowBoost,
		LocalContrast: cfg.LocalContrast,
	})
	return Result{
		Width:        width,
		Height:       height,
		RGBA:         toned,
		ReferenceIdx: refIdx,
		AlignQuality: quality,
	}, nil
}

// alignAndMerge runs the pyramid alignment + CA warp for every
// non-reference frame, then the frequency-domain merge across all
// channels. Each warp is split into row chunks with compositor yields
// (§4.7); the merge runs without yields. A panic in either stage is
// recovered and returned as an error.
func alignAndMerge(ctx context.Context, frames [][]byte, lumas [][]float32, refFrame []byte, refLuma []float32, refIdx, width, height int, cfg Config, yieldFn func()) (out []float64, quality []double, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, quality, err = nil, nil, fmt.Errorf("burst: panic during align/merge: %v", r)
		}
	}()

	refPyramid := BuildPyramid(append([]float32(nil), refLuma...), width, height)
	caCoeff := EstimateCA(refFrame, width, height)

	type channelPlanes struct{ r, g, b []float64 }
	warped := make([]channelPlanes, 0, len(frames)-1)
	quality = make([]double, 0, len(frames)-1)

	for i, f := range frames {
		if i == refIdx {
			continue
		}
		cmpPyramid := BuildPyramid(append([]float32(nil), lumas[i]...), width, height)
		fields := AlignPyramids(refPyramid, cmpPyramid)
		finest := fields[0]

		warpedFrame := make([]float32, width*height*4)
		if chunkErr := yield.ChunkRows(ctx, height, rowChunkSize, yieldEvery, func(start, end int) {
			WarpRows(warpedFrame, f, width, height, start, end, &finest, caCoeff)
		}, yieldFn); chunkErr != nil {
			return nil, nil, chunkErr
		}
		r, g, b := splitChannels(warpedFrame, width, height)
		warped = append(warped, channelPlanes{r, g, b})
		quality = append(quality, alignmentQuality(&finest))
	}

	refR, refG, refB := splitChannelsBytes(refFrame, width, height)
	avg := GlobalBrightness(refLuma, width, height)
	tileSize := TileSizeForLight(avg < lowLightThreshold)
	sigma := EstimateNoiseSigma(refLuma, width, height)
	effRobustness := cfg.EffectiveRobustness(width, height)

	params := MergeParams{TileSize: tileSize, ReadNoise: 8, Robustness: effRobustness}

	rPlanes := make([][]float64, len(warped))
	gPlanes := make([][]float64, len(warped))
	bPlanes := make([][]float64, len(warped))
	for i, w := range warped {
		rPlanes[i], gPlanes[i], bPlanes[i] = w.r, w.g, w.b
	}

	mergedR := mergeChannel(refR, rPlanes, width, height, params, sigma)
	mergedG := mergeChannel(refG, gPlanes, width, height, params, sigma)
	mergedB := mergeChannel(refB, bPlanes, width, height, params, sigma)

	out = interleaveRGBA(mergedR, mergedG, mergedB, width, height)
	return out, quality, nil
}

// double documents that this slice holds alignment-quality scores in
// [0,1]; the AlignedFrame data model (§3) reserves a float for exactly
// this purpose.
type double = float64

func splitChannels(rgba []float32, width, height int) (r, g, b []float64) {
	n := width * height
	r, g, b = make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		o := i * 4
		r[i], g[i], b[i] = float64(rgba[o]), float64(rgba[o+1]), float64(rgba[o+2])
	}
	return
}

func splitChannelsBytes(rgba []byte, width, height int) (r, g, b []float64) {
	n := width * height
	r, g, b = make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		o := i * 4
		r[i], g[i], b[i] = float64(rgba[o]), float64(rgba[o+1]), float64(rgba[o+2])
	}
	return
}

func interleaveRGBA(r, g, b []float64, width, height int) []float64 {
	n := width * height
	out := make([]float64, n*4)
	for i := 0; i < n; i++ {
		o := i * 4
		out[o], out[o+1], out[o+2], out[o+3] = r[i], g[i], b[i], 255
	}
	return out
}

// alignmentQuality summarizes a tile field's average cost into a
// normalized [0,1] quality score, higher meaning a better match.
func alignmentQuality(field *TileField) float64 {
	if len(field.Tiles) == 0 {
		return 0
	}
	var sum float64
	for _, t := range field.Tiles {
		sum += t.Cost
	}
	avg := sum / float64(len(field.Tiles))
	// Larger tile-sum costs map to lower quality via a soft decay; the
	// scale constant is tuned for full-resolution L1 tile costs.
	q := 1 / (1 + avg/4096)
	return clampFloat(q, 0, 1)
}
