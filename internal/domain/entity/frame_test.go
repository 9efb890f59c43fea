package entity

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrame_Validate(t *testing.T) {
	require.NoError(t, NewFrame(4, 3).Validate())

	bad := []*Frame{
		nil,
		{Width: 0, Height: 3},
		{Width: 4, Height: 3, Pix: make([]uint8, 4*3*3-1)},
		{Width: 4, Height: 3, Pix: make([]uint8, 4*3)},
	}
	for _, f := range bad {
		err := f.Validate()
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrMalformedFrame))
	}
}

func TestFrame_ChannelOrder(t *testing.T) {
	f := NewFrame(2, 2)
	f.SetBGR(1, 0, 10, 20, 30)
	require.Equal(t, []uint8{10, 20, 30}, f.Pix[3:6])

	b, g, r := f.BGR(1, 0)
	require.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{b, g, r})
	require.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 255}, f.At(1, 0))
}

func TestFrame_DrawImage(t *testing.T) {
	f := NewFrame(4, 4)
	red := image.NewUniform(color.RGBA{R: 255, A: 255})
	draw.Draw(f, image.Rect(2, 2, 10, 10), red, image.Point{}, draw.Src)

	_, _, r := f.BGR(3, 3)
	require.Equal(t, uint8(255), r)
	_, _, r = f.BGR(1, 1)
	require.Equal(t, uint8(0), r)
}

func TestFrame_FillClips(t *testing.T) {
	f := NewFrame(3, 3)
	f.Fill(image.Rect(-5, -5, 1, 1), 1, 2, 3)
	b, g, r := f.BGR(0, 0)
	require.Equal(t, [3]uint8{1, 2, 3}, [3]uint8{b, g, r})
	b, _, _ = f.BGR(1, 1)
	require.Equal(t, uint8(0), b)
}

func TestFrameFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(6, 5, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	f := FrameFromImage(img)
	require.Equal(t, 2, f.Width)
	require.Equal(t, 1, f.Height)
	b, g, r := f.BGR(1, 0)
	require.Equal(t, [3]uint8{3, 2, 1}, [3]uint8{b, g, r})
}

func TestFrame_CloneIsIndependent(t *testing.T) {
	f := NewFrame(1, 1)
	c := f.Clone()
	c.SetBGR(0, 0, 9, 9, 9)
	b, _, _ := f.BGR(0, 0)
	require.Equal(t, uint8(0), b)
}
