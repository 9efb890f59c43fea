//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"led-detector/internal/domain/entity"
)

// opencvSegmenter выполняет маскирование, эрозию и поиск контуров средствами OpenCV.
type opencvSegmenter struct {
	cfg Config
}

func newOpenCVSegmenter(cfg Config) (segmenter, error) {
	return &opencvSegmenter{cfg: cfg}, nil
}

func (s *opencvSegmenter) Contours(frame *entity.Frame) ([]Contour, error) {
	src, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Pix)
	if err != nil {
		return nil, fmt.Errorf("wrap frame: %w", err)
	}
	defer src.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(src, scalarOf(s.cfg.MaskLow), scalarOf(s.cfg.MaskHigh), &mask)

	kernel := gocv.GetStructuringElement(morphShape(s.cfg.KernelShape), image.Pt(s.cfg.KernelSize, s.cfg.KernelSize))
	defer kernel.Close()

	eroded := s.erode(mask, kernel)
	defer eroded.Close()

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	mode := gocv.RetrievalTree
	if s.cfg.ContourMode == ContourExternal {
		mode = gocv.RetrievalExternal
	}
	found := gocv.FindContoursWithParams(eroded, &hierarchy, mode, gocv.ChainApproxSimple)
	defer found.Close()

	parents := make([]int, found.Size())
	for i := range parents {
		parents[i] = -1
		if !hierarchy.Empty() {
			// [next, previous, first child, parent]
			parents[i] = int(hierarchy.GetVeciAt(0, i)[3])
		}
	}

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, Contour{
			Points: found.At(i).ToPoints(),
			Hole:   depth(parents, i)%2 == 1,
			Parent: parents[i],
		})
	}
	return contours, nil
}

// erode повторяет правило края BorderDark, добавляя вокруг маски рамку из нулей:
// сам OpenCV по умолчанию считает клетки за краем яркими.
func (s *opencvSegmenter) erode(mask, kernel gocv.Mat) gocv.Mat {
	pad := 0
	if s.cfg.ErodeBorder == BorderDark {
		pad = s.cfg.KernelSize/2 + 1
	}

	work := gocv.NewMat()
	gocv.CopyMakeBorder(mask, &work, pad, pad, pad, pad, gocv.BorderConstant, color.RGBA{})
	for i := 0; i < s.cfg.Iterations; i++ {
		gocv.Erode(work, &work, kernel)
	}
	if pad == 0 {
		return work
	}

	region := work.Region(image.Rect(pad, pad, pad+mask.Cols(), pad+mask.Rows()))
	out := region.Clone()
	region.Close()
	work.Close()
	return out
}

func depth(parents []int, i int) int {
	d := 0
	for p := parents[i]; p >= 0; p = parents[p] {
		d++
	}
	return d
}

func scalarOf(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

func morphShape(shape KernelShape) gocv.MorphShape {
	switch shape {
	case KernelRect:
		return gocv.MorphRect
	case KernelCross:
		return gocv.MorphCross
	default:
		return gocv.MorphEllipse
	}
}
