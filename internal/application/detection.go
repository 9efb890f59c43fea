package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"led-detector/internal/domain/entity"
	"led-detector/internal/domain/port"
)

// ErrFrameDropped — кадр отброшен, потому что ctx завершился до разметки.
var ErrFrameDropped = errors.New("frame dropped")

// DetectionService прогоняет кадры через детектор и сохраняет отчёты.
type DetectionService struct {
	detector  port.LedDetector
	reports   port.ReportRepository
	describer port.ResultDescriber
	codec     port.ImageCodec
	logger    *zap.SugaredLogger
}

// DetectionOutput содержит отчёт, размеченную картинку и подпись к ней.
type DetectionOutput struct {
	Report      *entity.FrameReport
	Annotated   []byte
	Description string
}

// NewDetectionService создаёт сервис. describer и logger могут быть nil.
func NewDetectionService(
	detector port.LedDetector,
	reports port.ReportRepository,
	describer port.ResultDescriber,
	codec port.ImageCodec,
	logger *zap.SugaredLogger,
) *DetectionService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DetectionService{
		detector:  detector,
		reports:   reports,
		describer: describer,
		codec:     codec,
		logger:    logger,
	}
}

// ProcessFrame находит светодиоды, рисует рамки в frame и сохраняет отчёт.
// Если ctx завершился после классификации, кадр не размечается и не сохраняется.
func (s *DetectionService) ProcessFrame(ctx context.Context, source string, frame *entity.Frame) (*entity.FrameReport, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	result, err := s.detector.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", source, err)
	}

	if err := ctx.Err(); err != nil {
		s.logger.Debugw("dropping frame", "source", source, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFrameDropped, source, err)
	}

	if err := s.detector.Annotate(frame, result); err != nil {
		return nil, fmt.Errorf("annotate %s: %w", source, err)
	}

	report := entity.NewFrameReport(source, *result)
	if s.reports != nil {
		if err := s.reports.Save(ctx, report); err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
	}

	s.logger.Infow("frame processed",
		"source", source,
		"red", result.Counts.Red,
		"green", result.Counts.Green,
		"blue", result.Counts.Blue,
		"degenerate", result.Degenerate,
	)
	return report, nil
}

// ProcessImage декодирует изображение, обрабатывает его и возвращает
// размеченную картинку с подписью.
func (s *DetectionService) ProcessImage(ctx context.Context, source string, data []byte) (*DetectionOutput, error) {
	if s.codec == nil {
		return nil, errors.New("image codec is not configured")
	}

	frame, err := s.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	report, err := s.ProcessFrame(ctx, source, frame)
	if err != nil {
		return nil, err
	}

	annotated, err := s.codec.Encode(frame)
	if err != nil {
		return nil, err
	}

	description := report.Result.Counts.String()
	if s.describer != nil {
		text, err := s.describer.Describe(ctx, report)
		if err != nil {
			s.logger.Warnw("describe failed", "source", source, "error", err)
		} else {
			description = text
		}
	}

	return &DetectionOutput{Report: report, Annotated: annotated, Description: description}, nil
}

// Totals возвращает суммарные счётчики по всем сохранённым кадрам.
func (s *DetectionService) Totals(ctx context.Context) (entity.Counts, error) {
	if s.reports == nil {
		return entity.Counts{}, nil
	}
	return s.reports.Totals(ctx)
}

// Recent возвращает n последних отчётов.
func (s *DetectionService) Recent(ctx context.Context, n int) ([]entity.FrameReport, error) {
	if s.reports == nil {
		return nil, nil
	}
	return s.reports.List(ctx, n)
}
