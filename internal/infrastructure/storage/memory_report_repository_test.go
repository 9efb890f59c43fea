package storage

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"led-detector/internal/domain/entity"
)

func sampleReport(source string, counts entity.Counts) *entity.FrameReport {
	return entity.NewFrameReport(source, entity.DetectionResult{
		Width:  64,
		Height: 48,
		Detections: []entity.Detection{
			{Centroid: image.Pt(10, 12), Label: entity.LabelRed, Votes: entity.Votes{Red: 40, Blue: 24}},
		},
		Counts:   counts,
		Contours: counts.Total(),
	})
}

func TestMemoryReportRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, sampleReport(fmt.Sprintf("frame-%d", i), entity.Counts{Red: 1})))
	}

	got, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "frame-4", got[0].Source)
	require.Equal(t, "frame-3", got[1].Source)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestMemoryReportRepository_Totals(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	require.Zero(t, totals.Total())

	require.NoError(t, repo.Save(ctx, sampleReport("a", entity.Counts{Red: 1, Blue: 2})))
	require.NoError(t, repo.Save(ctx, sampleReport("b", entity.Counts{Green: 3})))

	totals, err = repo.Totals(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.Counts{Red: 1, Green: 3, Blue: 2}, totals)
}

func TestMemoryReportRepository_SaveCopiesDetections(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	report := sampleReport("a", entity.Counts{Red: 1})
	require.NoError(t, repo.Save(ctx, report))
	report.Result.Detections[0].Label = entity.LabelBlue

	got, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, entity.LabelRed, got[0].Result.Detections[0].Label)
}
