package convert

import (
	"fmt"

	"github.com/cosmic-utils/camera-sub001/internal/logging"
)

// DepthSentinel marks "no data" in a Y10B packed depth buffer (§4.4.2,
// §9's Glossary).
const DepthSentinel = 1023

// bytesPerY10BRow returns the packed byte length for width 10-bit
// samples: 4 samples packed per 5 bytes, row-aligned to whole bytes.
func bytesPerY10BRow(width int) int {
	groups := (width + 3) / 4
	return groups * 5
}

// UnpackY10B decodes a 10-bit packed depth buffer ("4 values per 5
// bytes") into one uint16 per pixel. Device rows may be padded beyond
// the expected packed size; UnpackY10B truncates to exactly
// bytesPerY10BRow(width)*height and logs a warning if the input is
// shorter than that, per §4.4.2.
func UnpackY10B(data []byte, width, height int) ([]uint16, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("convert: invalid depth dimensions %dx%d", width, height)
	}
	rowBytes := bytesPerY10BRow(width)
	expected := rowBytes * height
	if len(data) < expected {
		logging.For("convert").Warn("Y10B input shorter than expected, truncating",
			"got", len(data), "want", expected, "width", width, "height", height)
	} else if len(data) > expected {
		data = data[:expected]
	}

	out := make([]uint16, width*height)
	for row := 0; row < height; row++ {
		rowStart := row * rowBytes
		rowEnd := rowStart + rowBytes
		if rowEnd > len(data) {
			// Ran out of input mid-row: remaining pixels stay zero,
			// which is below DepthSentinel and will read as invalid by
			// any mm-range check, but is NOT the 1023 sentinel itself.
			break
		}
		rowData := data[rowStart:rowEnd]
		for group := 0; group*4 < width; group++ {
			gOff := group * 5
			if gOff+5 > len(rowData) {
				break
			}
			b0, b1, b2, b3, b4 := rowData[gOff], rowData[gOff+1], rowData[gOff+2], rowData[gOff+3], rowData[gOff+4]
			v0 := uint16(b0) | (uint16(b4&0x03) << 8)
			v1 := uint16(b1) | (uint16(b4&0x0C) << 6)
			v2 := uint16(b2) | (uint16(b4&0x30) << 4)
			v3 := uint16(b3) | (uint16(b4&0xC0) << 2)
			for i, v := range [4]uint16{v0, v1, v2, v3} {
				col := group*4 + i
				if col >= width {
					break
				}
				out[row*width+col] = v
			}
		}
	}
	return out, nil
}

// DepthVisualization renders a depth buffer (as produced by UnpackY10B)
// to RGBA: grayscale when colormap is false, the "turbo" colormap when
// true. Sentinel pixels render black in either mode, per §8's named
// scenario.
func DepthVisualization(depth []uint16, width, height int, colormap bool) []byte {
	out := make([]byte, width*height*4)
	for i, v := range depth {
		if i >= width*height {
			break
		}
		o := i * 4
		if v >= DepthSentinel {
			out[o], out[o+1], out[o+2], out[o+3] = 0, 0, 0, 255
			continue
		}
		t := float64(v) / float64(DepthSentinel-1)
		if t > 1 {
			t = 1
		}
		var r, g, b byte
		if colormap {
			r, g, b = turboColormap(t)
		} else {
			gray := byte(t * 255)
			r, g, b = gray, gray, gray
		}
		out[o], out[o+1], out[o+2], out[o+3] = r, g, b, 255
	}
	return out
}

// turboColormap evaluates Google's "turbo" perceptual colormap at t in
// [0, 1] using a low-order polynomial fit, matching the visual ordering
// (dark blue -> cyan -> green -> yellow -> red) named in §4.4.2 without
// requiring the full 256-entry reference LUT.
func turboColormap(t float64) (byte, byte, byte) {
	r := poly(t, 0.13572138, 4.61539260, -42.66032258, 132.13108234, -152.94239396, 59.28637943)
	g := poly(t, 0.09140261, 2.19418839, 4.84296658, -14.18503333, 4.27729857, 2.82956604)
	b := poly(t, 0.10667330, 12.64194608, -60.58204836, 110.36276771, -89.90310912, 27.34824973)
	return clamp8(r * 255), clamp8(g * 255), clamp8(b * 255)
}

func poly(t float64, c0, c1, c2, c3, c4, c5 float64) float64 {
	return c0 + t*(c1+t*(c2+t*(c3+t*(c4+t*c5))))
}
