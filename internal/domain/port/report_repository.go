package port

import (
	"context"

	"led-detector/internal/domain/entity"
)

// ReportRepository интерфейс хранилища отчётов об обработанных кадрах
type ReportRepository interface {
	// Save сохраняет отчёт
	Save(ctx context.Context, report *entity.FrameReport) error

	// List возвращает последние limit отчётов, новые первыми
	List(ctx context.Context, limit int) ([]entity.FrameReport, error)

	// Totals возвращает суммарные счётчики по всем отчётам
	Totals(ctx context.Context) (entity.Counts, error)
}
