package vision

import (
	"errors"
	"fmt"
	"image/color"

	"led-detector/internal/domain/entity"
)

// ErrInvalidConfig возвращается из Config.Validate.
var ErrInvalidConfig = errors.New("invalid detector config")

// KernelShape — форма структурного элемента эрозии.
type KernelShape string

const (
	KernelRect    KernelShape = "rect"
	KernelCross   KernelShape = "cross"
	KernelEllipse KernelShape = "ellipse"
)

// BorderRule — как эрозия трактует клетки ядра за краем кадра.
type BorderRule string

const (
	// BorderBright игнорирует клетки за краем, как erode в OpenCV по умолчанию.
	BorderBright BorderRule = "bright"
	// BorderDark считает клетки за краем тёмными.
	BorderDark BorderRule = "dark"
)

// ContourMode — какие границы возвращает поиск контуров.
type ContourMode string

const (
	// ContourTree — все внешние границы и границы дыр на любой глубине.
	ContourTree ContourMode = "tree"
	// ContourExternal — только самые внешние границы.
	ContourExternal ContourMode = "external"
)

// DegeneratePolicy — что делать с контуром нулевой площади.
type DegeneratePolicy string

const (
	// DegenerateSkip пропускает только этот контур.
	DegenerateSkip DegeneratePolicy = "skip"
	// DegenerateAbort прекращает разбор оставшихся контуров кадра.
	DegenerateAbort DegeneratePolicy = "abort"
)

// Backend — реализация маскирования, эрозии и поиска контуров.
type Backend string

const (
	BackendNative Backend = "native"
	BackendOpenCV Backend = "opencv"
)

// Config — настройки детектора светодиодов.
type Config struct {
	MaskLow          color.RGBA // нижняя граница яркости по каналам, включительно
	MaskHigh         color.RGBA // верхняя граница яркости по каналам, включительно
	KernelShape      KernelShape
	KernelSize       int
	Iterations       int
	ErodeBorder      BorderRule
	ContourMode      ContourMode
	WindowRadius     int // полуширина окна голосования
	MarkerHalfSize   int
	MarkerThickness  int // <= 0 — залитый квадрат
	Palette          map[entity.Label]color.RGBA
	DegeneratePolicy DegeneratePolicy
	Backend          Backend
}

// DefaultPalette возвращает цвета рамок по умолчанию.
func DefaultPalette() map[entity.Label]color.RGBA {
	return map[entity.Label]color.RGBA{
		entity.LabelRed:   {R: 255, A: 255},
		entity.LabelGreen: {G: 255, A: 255},
		entity.LabelBlue:  {B: 255, A: 255},
	}
}

// DefaultConfig возвращает настройки, подобранные для светодиодов на светоотражающем фоне.
func DefaultConfig() Config {
	return Config{
		MaskLow:          color.RGBA{R: 232, G: 232, B: 232, A: 255},
		MaskHigh:         color.RGBA{R: 255, G: 255, B: 255, A: 255},
		KernelShape:      KernelEllipse,
		KernelSize:       3,
		Iterations:       1,
		ErodeBorder:      BorderBright,
		ContourMode:      ContourTree,
		WindowRadius:     8,
		MarkerHalfSize:   15,
		MarkerThickness:  3,
		Palette:          DefaultPalette(),
		DegeneratePolicy: DegenerateSkip,
		Backend:          BackendNative,
	}
}

// Validate проверяет настройки.
func (c Config) Validate() error {
	if c.MaskLow.R > c.MaskHigh.R || c.MaskLow.G > c.MaskHigh.G || c.MaskLow.B > c.MaskHigh.B {
		return fmt.Errorf("%w: mask low %v is above mask high %v", ErrInvalidConfig, c.MaskLow, c.MaskHigh)
	}
	switch c.KernelShape {
	case KernelRect, KernelCross, KernelEllipse:
	default:
		return fmt.Errorf("%w: unknown kernel shape %q", ErrInvalidConfig, c.KernelShape)
	}
	if c.KernelSize < 1 {
		return fmt.Errorf("%w: kernel size must be positive, got %d", ErrInvalidConfig, c.KernelSize)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: negative erosion iterations %d", ErrInvalidConfig, c.Iterations)
	}
	switch c.ErodeBorder {
	case BorderBright, BorderDark:
	default:
		return fmt.Errorf("%w: unknown erode border %q", ErrInvalidConfig, c.ErodeBorder)
	}
	switch c.ContourMode {
	case ContourTree, ContourExternal:
	default:
		return fmt.Errorf("%w: unknown contour mode %q", ErrInvalidConfig, c.ContourMode)
	}
	if c.WindowRadius < 0 {
		return fmt.Errorf("%w: negative window radius %d", ErrInvalidConfig, c.WindowRadius)
	}
	if c.MarkerHalfSize < 0 {
		return fmt.Errorf("%w: negative marker half size %d", ErrInvalidConfig, c.MarkerHalfSize)
	}
	for _, l := range entity.Labels() {
		if _, ok := c.Palette[l]; !ok {
			return fmt.Errorf("%w: palette has no color for %s", ErrInvalidConfig, l)
		}
	}
	switch c.DegeneratePolicy {
	case DegenerateSkip, DegenerateAbort:
	default:
		return fmt.Errorf("%w: unknown degenerate policy %q", ErrInvalidConfig, c.DegeneratePolicy)
	}
	switch c.Backend {
	case BackendNative, BackendOpenCV:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	return nil
}
