package vision

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"led-detector/internal/domain/entity"
)

func newTestDetector(t *testing.T, mutate func(*Config)) *LedDetector {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := NewLedDetector(cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return d
}

// threeLedFrame: три квадрата 10×10 чистого красного, зелёного и синего цвета
// с белым ядром 4×4, фон ниже порога маски.
func threeLedFrame() (*entity.Frame, map[entity.Label]image.Point) {
	f := solidFrame(120, 50, dark)
	paintLed(f, image.Pt(10, 20), 10, 4, red)
	paintLed(f, image.Pt(50, 20), 10, 4, green)
	paintLed(f, image.Pt(90, 20), 10, 4, blue)
	return f, map[entity.Label]image.Point{
		entity.LabelRed:   {14, 24},
		entity.LabelGreen: {54, 24},
		entity.LabelBlue:  {94, 24},
	}
}

func centroidsByLabel(t *testing.T, result *entity.DetectionResult) map[entity.Label]image.Point {
	t.Helper()
	out := make(map[entity.Label]image.Point)
	for _, det := range result.Detections {
		_, dup := out[det.Label]
		require.False(t, dup, "label %s detected twice", det.Label)
		out[det.Label] = det.Centroid
	}
	return out
}

func TestLedDetector_ThreeColoredSquares(t *testing.T) {
	d := newTestDetector(t, func(c *Config) { c.WindowRadius = 4 })
	f, want := threeLedFrame()

	result, err := d.Detect(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, entity.Counts{Red: 1, Green: 1, Blue: 1}, result.Counts)
	require.Len(t, result.Detections, 3)
	require.Equal(t, want, centroidsByLabel(t, result))
	require.Zero(t, result.Degenerate)
	require.False(t, result.Aborted)
}

func TestLedDetector_DefaultConfigGlowingLeds(t *testing.T) {
	d := newTestDetector(t, nil)
	f := solidFrame(160, 60, dark)
	paintLed(f, image.Pt(10, 20), 20, 4, red)
	paintLed(f, image.Pt(60, 20), 20, 4, green)
	paintLed(f, image.Pt(110, 20), 20, 4, blue)

	result, err := d.Detect(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, entity.Counts{Red: 1, Green: 1, Blue: 1}, result.Counts)
	require.Equal(t, map[entity.Label]image.Point{
		entity.LabelRed:   {19, 29},
		entity.LabelGreen: {69, 29},
		entity.LabelBlue:  {119, 29},
	}, centroidsByLabel(t, result))
}

func TestLedDetector_SingleWhiteSquareCentroid(t *testing.T) {
	d := newTestDetector(t, nil)
	f := solidFrame(60, 60, dark)
	paint(f, image.Rect(20, 30, 30, 40), white)

	result, err := d.Detect(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 1, result.Contours)
	require.Len(t, result.Detections, 1)
	require.Equal(t, image.Pt(24, 34), result.Detections[0].Centroid)
}

func TestLedDetector_ReflectiveNoiseIsIgnored(t *testing.T) {
	d := newTestDetector(t, nil)
	f := solidFrame(40, 40, dark)
	for _, p := range []image.Point{{3, 3}, {20, 7}, {35, 30}, {10, 36}} {
		paint(f, image.Rect(p.X, p.Y, p.X+1, p.Y+1), white)
	}

	result, err := d.Detect(context.Background(), f)
	require.NoError(t, err)
	require.Zero(t, result.Contours)
	require.Zero(t, result.Counts.Total())
}

func TestLedDetector_CountsArePerFrame(t *testing.T) {
	d := newTestDetector(t, func(c *Config) { c.WindowRadius = 4 })
	f, _ := threeLedFrame()

	first, err := d.Detect(context.Background(), f)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, first.Counts, second.Counts)
	require.Equal(t, 3, second.Counts.Total())

	empty, err := d.Detect(context.Background(), solidFrame(20, 20, dark))
	require.NoError(t, err)
	require.Zero(t, empty.Counts.Total())
}

func TestLedDetector_ProcessIsDeterministicOnUnannotatedCopy(t *testing.T) {
	d := newTestDetector(t, func(c *Config) { c.WindowRadius = 4 })
	original, _ := threeLedFrame()
	pristine := original.Clone()

	annotated, err := d.Process(context.Background(), original)
	require.NoError(t, err)
	require.NotEqual(t, pristine.Pix, original.Pix, "markers must be drawn in place")

	again, err := d.Process(context.Background(), pristine.Clone())
	require.NoError(t, err)
	require.Equal(t, annotated.Counts, again.Counts)
	require.ElementsMatch(t, annotated.Detections, again.Detections)
}

func TestLedDetector_MarkersDoNotAffectSameFrameVotes(t *testing.T) {
	d := newTestDetector(t, func(c *Config) {
		c.WindowRadius = 4
		c.MarkerHalfSize = 8
		c.MarkerThickness = 0
	})
	f := solidFrame(40, 20, dark)
	paintLed(f, image.Pt(5, 5), 10, 4, red)
	paintLed(f, image.Pt(14, 5), 10, 4, green)

	detected, err := d.Detect(context.Background(), f.Clone())
	require.NoError(t, err)
	processed, err := d.Process(context.Background(), f)
	require.NoError(t, err)
	require.ElementsMatch(t, detected.Detections, processed.Detections)
}

// degenerateFrame: сверху полоса 3×12, которая после эрозии превращается в линию
// нулевой площади, ниже — светодиод.
func degenerateFrame() *entity.Frame {
	f := solidFrame(60, 60, dark)
	paint(f, image.Rect(10, 5, 22, 8), white)
	paintLed(f, image.Pt(20, 30), 10, 4, red)
	return f
}

func TestLedDetector_DegenerateSkip(t *testing.T) {
	d := newTestDetector(t, func(c *Config) { c.WindowRadius = 4 })

	result, err := d.Detect(context.Background(), degenerateFrame())
	require.NoError(t, err)
	require.Equal(t, 2, result.Contours)
	require.Equal(t, 1, result.Degenerate)
	require.False(t, result.Aborted)
	require.Equal(t, entity.Counts{Red: 1}, result.Counts)
}

func TestLedDetector_DegenerateAbort(t *testing.T) {
	d := newTestDetector(t, func(c *Config) {
		c.WindowRadius = 4
		c.DegeneratePolicy = DegenerateAbort
	})

	result, err := d.Detect(context.Background(), degenerateFrame())
	require.NoError(t, err)
	require.True(t, result.Aborted)
	require.Equal(t, 1, result.Degenerate)
	require.Empty(t, result.Detections)
	require.Zero(t, result.Counts.Total())
}

func TestLedDetector_RingLedTreeVsExternal(t *testing.T) {
	ring := func() *entity.Frame {
		f := solidFrame(40, 40, dark)
		paint(f, image.Rect(10, 10, 25, 25), white)
		paint(f, image.Rect(15, 15, 20, 20), dark)
		return f
	}

	tree := newTestDetector(t, nil)
	result, err := tree.Detect(context.Background(), ring())
	require.NoError(t, err)
	require.Equal(t, 2, result.Contours)
	require.Len(t, result.Detections, 2)

	external := newTestDetector(t, func(c *Config) { c.ContourMode = ContourExternal })
	result, err = external.Detect(context.Background(), ring())
	require.NoError(t, err)
	require.Equal(t, 1, result.Contours)
	require.Len(t, result.Detections, 1)
}

func TestLedDetector_LedOnFrameCorner(t *testing.T) {
	d := newTestDetector(t, nil)
	f := solidFrame(30, 30, dark)
	paint(f, image.Rect(0, 0, 6, 6), white)

	result, err := d.Process(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, result.Detections, 1)
	det := result.Detections[0]
	assert.True(t, f.Contains(det.Centroid.X, det.Centroid.Y))
	assert.LessOrEqual(t, det.Votes.Total(), 16*16)
}

func TestLedDetector_MalformedFrame(t *testing.T) {
	d := newTestDetector(t, nil)
	f := &entity.Frame{Width: 10, Height: 10, Pix: make([]uint8, 10)}

	_, err := d.Process(context.Background(), f)
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrMalformedFrame))
	require.Equal(t, make([]uint8, 10), f.Pix)

	err = d.Annotate(f, &entity.DetectionResult{})
	require.True(t, errors.Is(err, entity.ErrMalformedFrame))
}

func TestLedDetector_AnnotateDrawsPaletteColors(t *testing.T) {
	d := newTestDetector(t, func(c *Config) { c.MarkerThickness = 1 })
	f := solidFrame(100, 100, dark)
	result := &entity.DetectionResult{Detections: []entity.Detection{
		{Centroid: image.Pt(30, 30), Label: entity.LabelGreen},
		{Centroid: image.Pt(70, 70), Label: entity.LabelBlue},
	}}

	require.NoError(t, d.Annotate(f, result))
	b, g, r := f.BGR(15, 30)
	require.Equal(t, [3]uint8{0, 255, 0}, [3]uint8{b, g, r})
	b, g, r = f.BGR(55, 70)
	require.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{b, g, r})

	require.Error(t, d.Annotate(f, nil))
}

func TestNewLedDetector_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KernelSize = 0
	_, err := NewLedDetector(cfg, nil)
	require.True(t, errors.Is(err, ErrInvalidConfig))
}
