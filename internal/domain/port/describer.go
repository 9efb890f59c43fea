package port

import (
	"context"

	"led-detector/internal/domain/entity"
)

// ResultDescriber интерфейс описателя результата детекции
type ResultDescriber interface {
	// Describe генерирует текстовое описание найденных светодиодов
	Describe(ctx context.Context, report *entity.FrameReport) (string, error)
}
