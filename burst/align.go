package burst

// Metric selects the per-tile cost function used at a pyramid level.
type Metric int

const (
	MetricL2 Metric = iota
	MetricL1
)

// levelParam holds the per-level tile size, search radius, and cost
// metric from §4.7's alignment table, indexed by pyramid level (0 =
// full resolution, 3 = coarsest).
type levelParam struct {
	Tile   int
	Search int
	Metric Metric
}

// levelParams is the fixed per-level table: level 3 (coarsest, 1/8
// scale) down to level 0 (full resolution).
var levelParams = [PyramidLevels]levelParam{
	0: {Tile: 32, Search: 2, Metric: MetricL1},
	1: {Tile: 32, Search: 2, Metric: MetricL2},
	2: {Tile: 16, Search: 2, Metric: MetricL2},
	3: {Tile: 8, Search: 4, Metric: MetricL2},
}

// Offset is a 2D per-tile alignment vector in pixels at its level's
// scale, with the winning cost that produced it.
type Offset struct {
	DX, DY float64
	Cost   float64
}

// TileField is the grid of per-tile Offsets produced by aligning one
// pyramid level, stored in tiles-per-row/tiles-per-column order.
type TileField struct {
	TilesX, TilesY int
	Tiles          []Offset
}

func (f *TileField) at(tx, ty int) Offset {
	return f.Tiles[ty*f.TilesX+tx]
}

// AlignPyramids aligns a comparison pyramid to a reference pyramid
// coarsest-to-finest, each level inheriting the coarser level's offset
// doubled as its search starting point ("upsampling correction"), per
// §4.7.
func AlignPyramids(ref, cmp Pyramid) [PyramidLevels]TileField {
	var fields [PyramidLevels]TileField
	var coarser *TileField
	for k := PyramidLevels - 1; k >= 0; k-- {
		field := alignLevel(ref.Levels[k], cmp.Levels[k], levelParams[k], coarser)
		fields[k] = field
		coarser = &fields[k]
	}
	return fields
}

// alignLevel runs half-tile-overlap tile-based motion search over one
// pyramid level.
func alignLevel(ref, cmp Level, p levelParam, coarser *TileField) TileField {
	step := p.Tile / 2
	if step < 1 {
		step = 1
	}
	tilesX := tileCount(ref.Width, p.Tile, step)
	tilesY := tileCount(ref.Height, p.Tile, step)
	field := TileField{TilesX: tilesX, TilesY: tilesY, Tiles: make([]Offset, tilesX*tilesY)}

	for ty := 0; ty < tilesY; ty++ {
		y0 := ty * step
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * step
			startDX, startDY := 0.0, 0.0
			if coarser != nil {
				ctx, cty := coarserTileIndex(tx, ty, tilesX, tilesY, coarser.TilesX, coarser.TilesY)
				co := coarser.at(ctx, cty)
				startDX, startDY = co.DX*2, co.DY*2
			}
			field.Tiles[ty*tilesX+tx] = searchTile(ref, cmp, x0, y0, p, startDX, startDY)
		}
	}
	return field
}

// tileCount returns how many overlapping tiles of the given size and
// step fit across a dimension, always covering at least one tile.
func tileCount(dim, tile, step int) int {
	if dim <= tile {
		return 1
	}
	n := (dim-tile)/step + 1
	if (dim-tile)%step != 0 {
		n++
	}
	return n
}

// coarserTileIndex maps a fine-level tile index proportionally onto
// the coarser level's tile grid.
func coarserTileIndex(tx, ty, tilesX, tilesY, coarserTilesX, coarserTilesY int) (int, int) {
	cx := tx * coarserTilesX / maxInt(tilesX, 1)
	cy := ty * coarserTilesY / maxInt(tilesY, 1)
	return clampInt(cx, 0, coarserTilesX-1), clampInt(cy, 0, coarserTilesY-1)
}

// searchTile evaluates every integer offset in [-search, search]^2
// around (startDX, startDY) rounded to the nearest integer, returning
// the minimum-cost Offset.
func searchTile(ref, cmp Level, x0, y0 int, p levelParam, startDX, startDY float64) Offset {
	baseDX := int(round(startDX))
	baseDY := int(round(startDY))

	best := Offset{DX: float64(baseDX), DY: float64(baseDY), Cost: -1}
	for dy := -p.Search; dy <= p.Search; dy++ {
		for dx := -p.Search; dx <= p.Search; dx++ {
			cost := tileCost(ref, cmp, x0, y0, p.Tile, baseDX+dx, baseDY+dy, p.Metric)
			if best.Cost < 0 || cost < best.Cost {
				best = Offset{DX: float64(baseDX + dx), DY: float64(baseDY + dy), Cost: cost}
			}
		}
	}
	return best
}

// tileCost sums the per-pixel difference between the reference tile at
// (x0,y0) and the comparison tile shifted by (dx,dy), using either
// squared (L2) or absolute (L1) differences. Out-of-bounds comparison
// samples are clamped to the nearest valid pixel.
func tileCost(ref, cmp Level, x0, y0, tile, dx, dy int, metric Metric) float64 {
	var sum float64
	for y := y0; y < y0+tile && y < ref.Height; y++ {
		cy := clampInt(y+dy, 0, cmp.Height-1)
		for x := x0; x < x0+tile && x < ref.Width; x++ {
			cx := clampInt(x+dx, 0, cmp.Width-1)
			diff := float64(ref.Luma[y*ref.Width+x]) - float64(cmp.Luma[cy*cmp.Width+cx])
			if metric == MetricL1 {
				if diff < 0 {
					diff = -diff
				}
				sum += diff
			} else {
				sum += diff * diff
			}
		}
	}
	return sum
}

func round(v float64) float64 {
	if v < 0 {
		return -float64(int(-v + 0.5))
	}
	return float64(int(v + 0.5))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
