package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"led-detector/internal/domain/entity"
)

type bgr struct{ b, g, r uint8 }

var (
	white = bgr{255, 255, 255}
	dark  = bgr{20, 20, 20}
	red   = bgr{0, 0, 255}
	green = bgr{0, 255, 0}
	blue  = bgr{255, 0, 0}
)

func solidFrame(w, h int, c bgr) *entity.Frame {
	f := entity.NewFrame(w, h)
	f.Fill(f.Bounds(), c.b, c.g, c.r)
	return f
}

func paint(f *entity.Frame, r image.Rectangle, c bgr) {
	f.Fill(r, c.b, c.g, c.r)
}

// paintLed рисует светодиод: цветное свечение size×size с белым ядром core×core в центре.
func paintLed(f *entity.Frame, origin image.Point, size, core int, glow bgr) {
	paint(f, image.Rect(origin.X, origin.Y, origin.X+size, origin.Y+size), glow)
	off := (size - core) / 2
	paint(f, image.Rect(origin.X+off, origin.Y+off, origin.X+off+core, origin.Y+off+core), white)
}

// maskFromRows строит маску из строк вида "..##..".
func maskFromRows(t *testing.T, rows ...string) *mat.Dense {
	t.Helper()
	require.NotEmpty(t, rows)
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for y, row := range rows {
		require.Len(t, row, len(rows[0]))
		for x, ch := range row {
			if ch == '#' {
				m.Set(y, x, 1)
			}
		}
	}
	return m
}

func maskRows(m *mat.Dense) []string {
	rows, cols := m.Dims()
	out := make([]string, rows)
	for y := 0; y < rows; y++ {
		line := make([]byte, cols)
		for x := 0; x < cols; x++ {
			line[x] = '.'
			if m.At(y, x) != 0 {
				line[x] = '#'
			}
		}
		out[y] = string(line)
	}
	return out
}
