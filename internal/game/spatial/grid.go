// Package spatial provides the broadphase spatial index used to cull
// collision and census candidates to roughly the entities near a query
// rectangle. All structures use preallocated slices with integer indices to
// minimize GC pressure and maximize cache locality.
package spatial

import (
	"math"
)

// AABB is an axis-aligned bounding box in arena coordinates.
type AABB struct {
	X, Y          float64 // top-left corner
	Width, Height float64
}

func (a AABB) overlaps(o AABB) bool {
	return a.X < o.X+o.Width && a.X+a.Width > o.X &&
		a.Y < o.Y+o.Height && a.Y+a.Height > o.Y
}

// Entry is a query result: the id and box last recorded for that id.
type Entry struct {
	ID  uint32
	Box AABB
}

// Grid is a uniform-cell broadphase index keyed by entity id. It supports
// insert, in-place mutation, delete-by-id, rectangle query and a clear, with
// O(1) amortized insert/mutate and output-proportional query cost.
//
// Cell size follows the original FazoSolver's convention of deriving grid
// granularity from arena size (core.hpp calls FazoSolverNew(size, size, 7):
// a magic divisor of 7 cells across the arena's span); callers pass that
// span in via NewGrid.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32        // cells[row*cols+col] = entity ids resident in that cell
	records     map[uint32]record // id -> box + cell membership, for mutate/delete
	scratch     []Entry
}

type record struct {
	box   AABB
	cells []int // cell indices this id is currently inserted into
}

// NewGrid builds a grid covering a world of the given width/height, divided
// into roughly divisor cells per axis (7 matches the original's magic
// constant; callers are free to tune it).
func NewGrid(worldWidth, worldHeight float64, divisor int) *Grid {
	if divisor < 1 {
		divisor = 1
	}
	cellSize := math.Max(worldWidth, worldHeight) / float64(divisor)
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	for i := range cells {
		cells[i] = make([]uint32, 0, 4)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		records:     make(map[uint32]record),
		scratch:     make([]Entry, 0, 64),
	}
}

// Clear empties every cell and drops all records, proportional to the
// occupied cells rather than the total cell count.
func (g *Grid) Clear() {
	for id, rec := range g.records {
		for _, idx := range rec.cells {
			g.cells[idx] = removeID(g.cells[idx], id)
		}
		delete(g.records, id)
	}
}

func (g *Grid) cellRange(box AABB) (minCol, maxCol, minRow, maxRow int) {
	minCol = int(box.X * g.invCellSize)
	maxCol = int((box.X + box.Width) * g.invCellSize)
	minRow = int(box.Y * g.invCellSize)
	maxRow = int((box.Y + box.Height) * g.invCellSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}
	if minCol >= g.cols {
		minCol = g.cols - 1
	}
	if minRow >= g.rows {
		minRow = g.rows - 1
	}
	if maxCol < minCol {
		maxCol = minCol
	}
	if maxRow < minRow {
		maxRow = minRow
	}
	return
}

// Insert records id with the given box, amortized O(1) (proportional to the
// handful of cells its box spans, never to the total entity count).
func (g *Grid) Insert(id uint32, box AABB) {
	minCol, maxCol, minRow, maxRow := g.cellRange(box)

	rec := record{box: box}
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.cells[idx] = append(g.cells[idx], id)
			rec.cells = append(rec.cells, idx)
		}
	}
	g.records[id] = rec
}

// Mutate updates id's box in place. A no-op (matching the original's
// idempotence guard in core.hpp's next_tick) if the box is unchanged from
// what's already recorded. Returns false if id is not present.
func (g *Grid) Mutate(id uint32, box AABB) bool {
	rec, ok := g.records[id]
	if !ok {
		return false
	}
	if rec.box == box {
		return true
	}
	for _, idx := range rec.cells {
		g.cells[idx] = removeID(g.cells[idx], id)
	}
	delete(g.records, id)
	g.Insert(id, box)
	return true
}

// Delete removes id from the index. Returns false if id was not present.
func (g *Grid) Delete(id uint32) bool {
	rec, ok := g.records[id]
	if !ok {
		return false
	}
	for _, idx := range rec.cells {
		g.cells[idx] = removeID(g.cells[idx], id)
	}
	delete(g.records, id)
	return true
}

// Query returns every entry whose last-recorded box may overlap box. The
// result may over-report (entries outside box) but never under-reports;
// callers must narrow-phase filter. The returned slice is reused across
// calls and must be copied by the caller to persist it. Because every call
// rewrites that shared scratch slice, Query is not safe to call
// concurrently, not even with other Query calls.
func (g *Grid) Query(box AABB) []Entry {
	minCol, maxCol, minRow, maxRow := g.cellRange(box)

	seen := make(map[uint32]struct{}, 16)
	scratch := g.scratch[:0]
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			for _, id := range g.cells[idx] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				entryBox := g.records[id].box
				if !entryBox.overlaps(box) {
					continue
				}
				scratch = append(scratch, Entry{ID: id, Box: entryBox})
			}
		}
	}
	g.scratch = scratch
	return scratch
}

// MemoryUsage estimates bytes retained by the index: cell slices plus the
// id->record map.
func (g *Grid) MemoryUsage() int {
	total := len(g.cells) * 24 // slice headers
	for _, c := range g.cells {
		total += cap(c) * 4
	}
	total += len(g.records) * 64
	return total
}

// Dimensions reports the grid's cell layout, for diagnostics/tests.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}

func removeID(s []uint32, id uint32) []uint32 {
	for i, v := range s {
		if v == id {
			last := len(s) - 1
			s[i] = s[last]
			return s[:last]
		}
	}
	return s
}
