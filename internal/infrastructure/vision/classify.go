package vision

import (
	"image"

	"led-detector/internal/domain/entity"
)

// SampleWindow возвращает окно [cx-r, cx+r) × [cy-r, cy+r), обрезанное по кадру.
func SampleWindow(frame *entity.Frame, center image.Point, radius int) image.Rectangle {
	return image.Rect(center.X-radius, center.Y-radius, center.X+radius, center.Y+radius).Intersect(frame.Bounds())
}

// SampleVotes голосует каждым пикселем окна за преобладающий канал.
// Пиксели за краем кадра не читаются.
func SampleVotes(frame *entity.Frame, center image.Point, radius int) entity.Votes {
	var votes entity.Votes
	window := SampleWindow(frame, center, radius)
	for y := window.Min.Y; y < window.Max.Y; y++ {
		for x := window.Min.X; x < window.Max.X; x++ {
			b, g, r := frame.BGR(x, y)
			votes.Add(entity.Dominant(int(b), int(g), int(r)))
		}
	}
	return votes
}

// Classify определяет цвет светодиода с центром в center.
func Classify(frame *entity.Frame, center image.Point, radius int) entity.Detection {
	votes := SampleVotes(frame, center, radius)
	return entity.Detection{
		Centroid: center,
		Label:    votes.Winner(),
		Votes:    votes,
	}
}
