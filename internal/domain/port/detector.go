package port

import (
	"context"

	"led-detector/internal/domain/entity"
)

// LedDetector интерфейс детектора светодиодов
type LedDetector interface {
	// Detect находит светодиоды и их цвета, не меняя кадр
	Detect(ctx context.Context, frame *entity.Frame) (*entity.DetectionResult, error)

	// Annotate рисует рамки найденных светодиодов прямо в кадре
	Annotate(frame *entity.Frame, result *entity.DetectionResult) error
}
