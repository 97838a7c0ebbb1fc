package convert

import "fmt"

// DemosaicGRBG converts a GRBG Bayer mosaic to RGB using simple bilinear
// interpolation. Per §4.4.3, quality is not critical here: the result
// feeds either still-photo capture (which re-processes through the
// burst pipeline) or a coarse preview.
//
// GRBG row/column parity:
//
//	row 0: G R G R ...
//	row 1: B G B G ...
func DemosaicGRBG(bayer []byte, width, height int) ([]byte, error) {
	if width < 2 || height < 2 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("convert: invalid GRBG dimensions %dx%d", width, height)
	}
	if len(bayer) < width*height {
		return nil, fmt.Errorf("convert: bayer buffer too small")
	}

	out := make([]byte, width*height*4)
	at := func(x, y int) int {
		if x < 0 {
			x = 0
		}
		if x >= width {
			x = width - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		return int(bayer[y*width+x])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			evenRow := y%2 == 0
			evenCol := x%2 == 0

			var r, g, b int
			switch {
			case evenRow && evenCol: // G
				g = at(x, y)
				r = avg2(at(x-1, y), at(x+1, y))
				b = avg2(at(x, y-1), at(x, y+1))
			case evenRow && !evenCol: // R
				r = at(x, y)
				g = avg4(at(x-1, y), at(x+1, y), at(x, y-1), at(x, y+1))
				b = avg4(at(x-1, y-1), at(x+1, y-1), at(x-1, y+1), at(x+1, y+1))
			case !evenRow && evenCol: // B
				b = at(x, y)
				g = avg4(at(x-1, y), at(x+1, y), at(x, y-1), at(x, y+1))
				r = avg4(at(x-1, y-1), at(x+1, y-1), at(x-1, y+1), at(x+1, y+1))
			default: // G
				g = at(x, y)
				r = avg2(at(x, y-1), at(x, y+1))
				b = avg2(at(x-1, y), at(x+1, y))
			}

			i := (y*width + x) * 4
			out[i], out[i+1], out[i+2], out[i+3] = byte(r), byte(g), byte(b), 255
		}
	}
	return out, nil
}

func avg2(a, b int) int { return (a + b) / 2 }
func avg4(a, b, c, d int) int { return (a + b + c + d) / 4 }
