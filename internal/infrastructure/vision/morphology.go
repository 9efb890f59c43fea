package vision

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// StructuringElement строит ядро size×size той же геометрии, что getStructuringElement в OpenCV.
// Эллипс 3×3 совпадает с крестом.
func StructuringElement(shape KernelShape, size int) *mat.Dense {
	if size < 1 {
		size = 1
	}
	kernel := mat.NewDense(size, size, nil)
	r, c := size/2, size/2
	var invR2 float64
	if r > 0 {
		invR2 = 1 / float64(r*r)
	}
	for i := 0; i < size; i++ {
		j1, j2 := 0, 0
		switch shape {
		case KernelRect:
			j2 = size
		case KernelCross:
			if i == r {
				j2 = size
			} else {
				j1, j2 = c, c+1
			}
		default:
			dy := i - r
			if abs(dy) <= r {
				dx := int(math.RoundToEven(float64(c) * math.Sqrt(float64(r*r-dy*dy)*invR2)))
				j1 = max(c-dx, 0)
				j2 = min(c+dx+1, size)
			}
		}
		for j := j1; j < j2; j++ {
			kernel.Set(i, j, 1)
		}
	}
	return kernel
}

type offset struct {
	dy, dx int
}

// Erode применяет эрозию iterations раз. Яркий пиксель остаётся ярким,
// только если ярки все клетки ядра с центром в нём. Клетки за краем кадра
// обрабатываются по правилу border. Исходная маска не меняется.
func Erode(mask, kernel *mat.Dense, iterations int, border BorderRule) *mat.Dense {
	rows, cols := mask.Dims()
	kr, kc := kernel.Dims()
	ay, ax := kr/2, kc/2

	var offsets []offset
	for i := 0; i < kr; i++ {
		for j := 0; j < kc; j++ {
			if kernel.At(i, j) != 0 {
				offsets = append(offsets, offset{dy: i - ay, dx: j - ax})
			}
		}
	}

	src := mat.DenseCopyOf(mask)
	for n := 0; n < iterations; n++ {
		dst := mat.NewDense(rows, cols, nil)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if src.At(y, x) != 0 && survives(src, y, x, rows, cols, offsets, border) {
					dst.Set(y, x, 1)
				}
			}
		}
		src = dst
	}
	return src
}

func survives(src *mat.Dense, y, x, rows, cols int, offsets []offset, border BorderRule) bool {
	for _, o := range offsets {
		yy, xx := y+o.dy, x+o.dx
		if yy < 0 || xx < 0 || yy >= rows || xx >= cols {
			if border == BorderDark {
				return false
			}
			continue
		}
		if src.At(yy, xx) == 0 {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
