package vision

import (
	"image"
	"image/color"
	"image/draw"

	"led-detector/internal/domain/entity"
)

// MarkerRect возвращает квадрат со стороной 2*half+1 с центром в center.
func MarkerRect(center image.Point, half int) image.Rectangle {
	return image.Rect(center.X-half, center.Y-half, center.X+half+1, center.Y+half+1)
}

// DrawMarker рисует квадратную рамку толщиной thickness вокруг center.
// Линия центрирована на краю квадрата; thickness <= 0 — залитый квадрат.
// Всё, что выходит за кадр, обрезается.
func DrawMarker(frame draw.Image, center image.Point, half, thickness int, c color.RGBA) {
	src := image.NewUniform(c)
	edge := MarkerRect(center, half)
	if thickness <= 0 {
		draw.Draw(frame, edge, src, image.Point{}, draw.Src)
		return
	}

	grow := (thickness - 1) / 2
	outer := edge.Inset(-grow)
	inner := edge.Inset(grow + 1)
	if inner.Empty() {
		draw.Draw(frame, outer, src, image.Point{}, draw.Src)
		return
	}

	bands := [...]image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
	}
	for _, b := range bands {
		draw.Draw(frame, b, src, image.Point{}, draw.Src)
	}
}

// annotate рисует рамку цвета метки вокруг каждого найденного светодиода.
func annotate(frame *entity.Frame, detections []entity.Detection, cfg Config) {
	for _, det := range detections {
		DrawMarker(frame, det.Centroid, cfg.MarkerHalfSize, cfg.MarkerThickness, cfg.Palette[det.Label])
	}
}
