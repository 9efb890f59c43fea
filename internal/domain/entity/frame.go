package entity

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrMalformedFrame возвращается, когда размеры кадра не сходятся с буфером пикселей.
var ErrMalformedFrame = errors.New("malformed frame")

// FrameChannels — число байт на пиксель (B, G, R).
const FrameChannels = 3

// Frame — кадр в раскладке bgr8: строки подряд, по три байта на пиксель в порядке B, G, R.
// Реализует image.Image и draw.Image, поэтому в него можно рисовать через image/draw.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame создаёт чёрный кадр заданного размера.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*FrameChannels),
	}
}

// FrameFromImage копирует произвольное изображение в новый кадр.
func FrameFromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			f.SetBGR(x, y, c.B, c.G, c.R)
		}
	}
	return f
}

// Validate проверяет, что буфер соответствует ширине и высоте.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrMalformedFrame)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: non-positive size %dx%d", ErrMalformedFrame, f.Width, f.Height)
	}
	if want := f.Width * f.Height * FrameChannels; len(f.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrMalformedFrame, f.Width, f.Height, want, len(f.Pix))
	}
	return nil
}

// Contains сообщает, лежит ли точка внутри кадра.
func (f *Frame) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// BGR возвращает каналы пикселя. Координаты должны лежать внутри кадра.
func (f *Frame) BGR(x, y int) (b, g, r uint8) {
	i := f.offset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetBGR записывает каналы пикселя. Координаты должны лежать внутри кадра.
func (f *Frame) SetBGR(x, y int, b, g, r uint8) {
	i := f.offset(x, y)
	f.Pix[i] = b
	f.Pix[i+1] = g
	f.Pix[i+2] = r
}

// Fill заливает прямоугольник одним цветом, обрезая его по границам кадра.
func (f *Frame) Fill(rect image.Rectangle, b, g, r uint8) {
	rect = rect.Intersect(f.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			f.SetBGR(x, y, b, g, r)
		}
	}
}

// Clone возвращает независимую копию кадра.
func (f *Frame) Clone() *Frame {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

func (f *Frame) offset(x, y int) int {
	return (y*f.Width + x) * FrameChannels
}

// ColorModel реализует image.Image.
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds реализует image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At реализует image.Image.
func (f *Frame) At(x, y int) color.Color {
	if !f.Contains(x, y) {
		return color.RGBA{}
	}
	b, g, r := f.BGR(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Set реализует draw.Image. Точки вне кадра игнорируются.
func (f *Frame) Set(x, y int, c color.Color) {
	if !f.Contains(x, y) {
		return
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	f.SetBGR(x, y, rgba.B, rgba.G, rgba.R)
}
