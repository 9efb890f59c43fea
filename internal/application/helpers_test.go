package app

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"led-detector/internal/domain/entity"
	"led-detector/internal/infrastructure/describer"
	"led-detector/internal/infrastructure/imageio"
	"led-detector/internal/infrastructure/storage"
	"led-detector/internal/infrastructure/vision"
)

// ledFrame рисует на тёмном фоне светодиоды 20×20 с белым ядром 4×4:
// красный, зелёный и синий.
func ledFrame() *entity.Frame {
	f := entity.NewFrame(160, 60)
	f.Fill(f.Bounds(), 20, 20, 20)
	led := func(x int, b, g, r uint8) {
		f.Fill(image.Rect(x, 20, x+20, 40), b, g, r)
		f.Fill(image.Rect(x+8, 28, x+12, 32), 255, 255, 255)
	}
	led(10, 0, 0, 255)
	led(60, 0, 255, 0)
	led(110, 255, 0, 0)
	return f
}

type fixture struct {
	detection *DetectionService
	reports   *storage.MemoryReportRepository
	codec     imageio.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()
	detector, err := vision.NewLedDetector(vision.DefaultConfig(), logger)
	require.NoError(t, err)

	reports := storage.NewMemoryReportRepository()
	codec := imageio.Codec{}
	return &fixture{
		detection: NewDetectionService(detector, reports, describer.NewTextDescriber(5), codec, logger),
		reports:   reports,
		codec:     codec,
	}
}
