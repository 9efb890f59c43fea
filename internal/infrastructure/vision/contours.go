package vision

import (
	"image"

	"gonum.org/v1/gonum/mat"
)

// Contour — граница одной связной яркой области.
type Contour struct {
	Points []image.Point // вершины после сжатия цепочки
	Hole   bool          // граница дыры, а не внешняя граница
	Parent int           // индекс охватывающего контура или -1
}

// Соседи в порядке против часовой стрелки: E, NE, N, NW, W, SW, S, SE.
var neighborSteps = [8]image.Point{
	{X: 1, Y: 0}, {X: 1, Y: -1}, {X: 0, Y: -1}, {X: -1, Y: -1},
	{X: -1, Y: 0}, {X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// borderGrid — маска с рамкой из нулей шириной в один пиксель, в которой
// обход границ записывает номера границ (алгоритм Suzuki-Abe).
type borderGrid struct {
	f     []int
	w     int
	steps [8]int
}

func newBorderGrid(mask *mat.Dense) *borderGrid {
	rows, cols := mask.Dims()
	g := &borderGrid{f: make([]int, (rows+2)*(cols+2)), w: cols + 2}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.At(y, x) != 0 {
				g.f[(y+1)*g.w+x+1] = 1
			}
		}
	}
	for i, s := range neighborSteps {
		g.steps[i] = s.Y*g.w + s.X
	}
	return g
}

func (g *borderGrid) point(p int) image.Point {
	return image.Pt(p%g.w-1, p/g.w-1)
}

func (g *borderGrid) direction(from, to int) int {
	d := to - from
	for i, s := range g.steps {
		if s == d {
			return i
		}
	}
	return 0
}

type border struct {
	hole   bool
	parent int // номер границы-родителя, 1 — рамка кадра
}

// FindContours находит границы ярких областей маски обходом границ Suzuki-Abe.
// Рамка кадра считается тёмной. Маска не меняется, порядок результата не гарантирован.
func FindContours(mask *mat.Dense, mode ContourMode) []Contour {
	rows, cols := mask.Dims()
	g := newBorderGrid(mask)

	// borders[nbd]; 0 не используется, 1 — рамка кадра
	borders := []border{{}, {hole: true}}
	var traced [][]image.Point
	nbd := 1

	for i := 1; i <= rows; i++ {
		lnbd := 1
		for j := 1; j <= cols; j++ {
			p := i*g.w + j
			v := g.f[p]
			if v == 0 {
				continue
			}

			from, hole, start := 0, false, true
			switch {
			case v == 1 && g.f[p-1] == 0:
				from = p - 1
			case v >= 1 && g.f[p+1] == 0:
				from, hole = p+1, true
				if v > 1 {
					lnbd = v
				}
			default:
				start = false
			}

			if start {
				nbd++
				parent := borders[lnbd].parent
				if hole != borders[lnbd].hole {
					parent = lnbd
				}
				borders = append(borders, border{hole: hole, parent: parent})
				traced = append(traced, g.follow(p, from, nbd))
			}

			if g.f[p] != 1 {
				lnbd = abs(g.f[p])
			}
		}
	}

	contours := make([]Contour, 0, len(traced))
	for k, pts := range traced {
		b := borders[k+2]
		if mode == ContourExternal {
			if b.hole || b.parent != 1 {
				continue
			}
			contours = append(contours, Contour{Points: approxSimple(pts), Parent: -1})
			continue
		}
		contours = append(contours, Contour{Points: approxSimple(pts), Hole: b.hole, Parent: b.parent - 2})
	}
	return contours
}

// follow обходит границу, начинающуюся в start, против часовой стрелки.
// from — соседний тёмный пиксель, с которого начинается поиск.
func (g *borderGrid) follow(start, from, nbd int) []image.Point {
	d := g.direction(start, from)
	first := -1
	for k := 0; k < 8; k++ {
		q := start + g.steps[(d-k+8)%8]
		if g.f[q] != 0 {
			first = q
			break
		}
	}
	if first < 0 {
		// одиночный пиксель
		g.f[start] = -nbd
		return []image.Point{g.point(start)}
	}

	pts := []image.Point{g.point(start)}
	prev, cur := first, start
	for {
		d := g.direction(cur, prev)
		next, eastZero := prev, false
		for k := 1; k <= 8; k++ {
			dd := (d + k) % 8
			q := cur + g.steps[dd]
			if g.f[q] != 0 {
				next = q
				break
			}
			if dd == 0 {
				eastZero = true
			}
		}

		if eastZero {
			g.f[cur] = -nbd
		} else if g.f[cur] == 1 {
			g.f[cur] = nbd
		}

		if next == start && cur == first {
			return pts
		}
		prev, cur = cur, next
		pts = append(pts, g.point(cur))
	}
}

// approxSimple выбрасывает вершины, в которых направление обхода не меняется.
func approxSimple(pts []image.Point) []image.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}
	out := make([]image.Point, 0, n)
	for k := 0; k < n; k++ {
		prev, cur, next := pts[(k+n-1)%n], pts[k], pts[(k+1)%n]
		if cur.Sub(prev) != next.Sub(cur) {
			out = append(out, cur)
		}
	}
	if len(out) == 0 {
		out = append(out, pts[0])
	}
	return out
}
