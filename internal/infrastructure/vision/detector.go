package vision

import (
	"context"
	"errors"
	"image"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"led-detector/internal/domain/entity"
	"led-detector/internal/domain/port"
)

// segmenter выделяет контуры ярких областей кадра: маска, эрозия, обход границ.
type segmenter interface {
	Contours(frame *entity.Frame) ([]Contour, error)
}

type nativeSegmenter struct {
	cfg    Config
	kernel *mat.Dense
}

func newNativeSegmenter(cfg Config) *nativeSegmenter {
	return &nativeSegmenter{
		cfg:    cfg,
		kernel: StructuringElement(cfg.KernelShape, cfg.KernelSize),
	}
}

func (s *nativeSegmenter) Contours(frame *entity.Frame) ([]Contour, error) {
	mask := InRange(frame, s.cfg.MaskLow, s.cfg.MaskHigh)
	eroded := Erode(mask, s.kernel, s.cfg.Iterations, s.cfg.ErodeBorder)
	return FindContours(eroded, s.cfg.ContourMode), nil
}

// LedDetector находит светящиеся светодиоды и определяет их цвет.
// Хранит только неизменяемые настройки, поэтому безопасен для
// одновременной обработки разных кадров.
type LedDetector struct {
	cfg    Config
	seg    segmenter
	logger *zap.SugaredLogger
}

// NewLedDetector создаёт детектор. logger может быть nil.
func NewLedDetector(cfg Config, logger *zap.SugaredLogger) (*LedDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var seg segmenter
	switch cfg.Backend {
	case BackendOpenCV:
		s, err := newOpenCVSegmenter(cfg)
		if err != nil {
			return nil, err
		}
		seg = s
	default:
		seg = newNativeSegmenter(cfg)
	}

	return &LedDetector{cfg: cfg, seg: seg, logger: logger}, nil
}

// Config возвращает настройки детектора.
func (d *LedDetector) Config() Config {
	return d.cfg
}

// Detect находит и классифицирует светодиоды, не рисуя в кадре.
// Кадр обрабатывается целиком: ctx не прерывает конвейер на середине.
func (d *LedDetector) Detect(ctx context.Context, frame *entity.Frame) (*entity.DetectionResult, error) {
	_ = ctx
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	contours, err := d.seg.Contours(frame)
	if err != nil {
		return nil, err
	}

	result := &entity.DetectionResult{
		Width:      frame.Width,
		Height:     frame.Height,
		Detections: make([]entity.Detection, 0, len(contours)),
		Contours:   len(contours),
	}
	for i, c := range contours {
		center, ok := ContourMoments(c.Points).Centroid()
		if !ok {
			result.Degenerate++
			if d.cfg.DegeneratePolicy == DegenerateAbort {
				result.Aborted = true
				d.logger.Debugw("degenerate contour, dropping remaining contours",
					"contour", i, "remaining", len(contours)-i-1)
				break
			}
			d.logger.Debugw("skipping degenerate contour", "contour", i, "points", len(c.Points))
			continue
		}

		det := Classify(frame, clampPoint(center, frame.Bounds()), d.cfg.WindowRadius)
		result.Detections = append(result.Detections, det)
		result.Counts.Add(det.Label)
	}

	d.logger.Debugw("frame classified",
		"contours", result.Contours, "counts", result.Counts.String(), "degenerate", result.Degenerate)
	return result, nil
}

// Annotate рисует рамки найденных светодиодов прямо в кадре.
func (d *LedDetector) Annotate(frame *entity.Frame, result *entity.DetectionResult) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	if result == nil {
		return errors.New("nil detection result")
	}
	annotate(frame, result.Detections, d.cfg)
	return nil
}

// Process классифицирует все контуры, затем рисует рамки.
// Рамки не влияют на голосование в том же кадре.
func (d *LedDetector) Process(ctx context.Context, frame *entity.Frame) (*entity.DetectionResult, error) {
	result, err := d.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}
	if err := d.Annotate(frame, result); err != nil {
		return nil, err
	}
	return result, nil
}

// clampPoint прижимает точку к прямоугольнику: центр масс самопересекающегося
// контура может оказаться вне кадра.
func clampPoint(p image.Point, r image.Rectangle) image.Point {
	return image.Pt(
		min(max(p.X, r.Min.X), r.Max.X-1),
		min(max(p.Y, r.Min.Y), r.Max.Y-1),
	)
}

var _ port.LedDetector = (*LedDetector)(nil)
