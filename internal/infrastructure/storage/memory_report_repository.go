package storage

import (
	"context"
	"sync"

	"led-detector/internal/domain/entity"
	"led-detector/internal/domain/port"
)

// MemoryReportRepository хранит отчёты в памяти процесса
type MemoryReportRepository struct {
	mu      sync.RWMutex
	reports []entity.FrameReport
	totals  entity.Counts
}

// NewMemoryReportRepository создаёт пустое хранилище отчётов
func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{}
}

// Save сохраняет копию отчёта
func (r *MemoryReportRepository) Save(ctx context.Context, report *entity.FrameReport) error {
	stored := *report
	stored.Result.Detections = append([]entity.Detection(nil), report.Result.Detections...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports = append(r.reports, stored)
	r.totals = r.totals.Merge(stored.Result.Counts)
	return nil
}

// List возвращает последние limit отчётов, новые первыми. limit <= 0 — все
func (r *MemoryReportRepository) List(ctx context.Context, limit int) ([]entity.FrameReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.reports)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]entity.FrameReport, 0, n)
	for i := len(r.reports) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.reports[i])
	}
	return out, nil
}

// Totals возвращает суммарные счётчики
func (r *MemoryReportRepository) Totals(ctx context.Context) (entity.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.totals, nil
}

var _ port.ReportRepository = (*MemoryReportRepository)(nil)
