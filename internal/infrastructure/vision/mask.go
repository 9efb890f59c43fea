package vision

import (
	"image/color"

	"gonum.org/v1/gonum/mat"

	"led-detector/internal/domain/entity"
)

// InRange строит бинарную маску: 1, если каждый канал пикселя лежит в [low, high].
// Кадр должен быть валидным.
func InRange(frame *entity.Frame, low, high color.RGBA) *mat.Dense {
	mask := mat.NewDense(frame.Height, frame.Width, nil)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			b, g, r := frame.BGR(x, y)
			if within(b, low.B, high.B) && within(g, low.G, high.G) && within(r, low.R, high.R) {
				mask.Set(y, x, 1)
			}
		}
	}
	return mask
}

func within(v, lo, hi uint8) bool {
	return v >= lo && v <= hi
}

// CountBright возвращает число ярких клеток маски.
func CountBright(mask *mat.Dense) int {
	rows, cols := mask.Dims()
	n := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.At(y, x) != 0 {
				n++
			}
		}
	}
	return n
}
