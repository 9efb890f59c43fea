package vision

import (
	"image"
	"math"
)

// Moments — пространственные моменты многоугольника до первого порядка.
type Moments struct {
	M00 float64 // площадь
	M10 float64
	M01 float64
}

// ContourMoments считает моменты замкнутого многоугольника по формуле Грина.
// Знак нормализуется так, что M00 >= 0 при любом направлении обхода.
func ContourMoments(pts []image.Point) Moments {
	n := len(pts)
	var a00, a10, a01 float64
	for k := 0; k < n; k++ {
		p, q := pts[(k+n-1)%n], pts[k]
		cross := float64(p.X*q.Y - q.X*p.Y)
		a00 += cross
		a10 += cross * float64(p.X+q.X)
		a01 += cross * float64(p.Y+q.Y)
	}
	if a00 < 0 {
		a00, a10, a01 = -a00, -a10, -a01
	}
	return Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
}

// Centroid возвращает floor(M10/M00), floor(M01/M00).
// ok == false для вырожденного контура (точка или линия).
func (m Moments) Centroid() (image.Point, bool) {
	if m.M00 == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(math.Floor(m.M10/m.M00)), int(math.Floor(m.M01/m.M00))), true
}
