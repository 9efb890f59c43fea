package container

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"led-detector/config"
	app "led-detector/internal/application"
	"led-detector/internal/domain/port"
	"led-detector/internal/infrastructure/describer"
	"led-detector/internal/infrastructure/imageio"
	"led-detector/internal/infrastructure/storage"
	"led-detector/internal/infrastructure/storage/sqlite"
	"led-detector/internal/infrastructure/vision"
)

// describeLimit — сколько светодиодов перечислять в подписи к кадру.
const describeLimit = 10

type Container struct {
	UserService      *app.UserService
	DetectionService *app.DetectionService
	BatchService     *app.BatchService
	Codec            port.ImageCodec

	closers []func() error
}

func New(cfg *config.Config, logger *zap.SugaredLogger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	detector, err := vision.NewLedDetector(cfg.Vision, logger.Named("vision"))
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}

	c := &Container{}

	var reports port.ReportRepository
	if cfg.DatabasePath != "" {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		reports = sqlite.NewReportRepository(db)
	} else {
		reports = storage.NewMemoryReportRepository()
	}

	codec := imageio.Codec{Quality: imageio.DefaultJPEGQuality}
	c.Codec = codec
	c.UserService = app.NewUserService(storage.NewMemoryUserRepository())
	c.DetectionService = app.NewDetectionService(
		detector, reports, describer.NewTextDescriber(describeLimit), codec, logger.Named("detection"))
	c.BatchService = app.NewBatchService(c.DetectionService, codec, cfg.Workers, logger.Named("batch"))

	return c, nil
}

// Close освобождает хранилища.
func (c *Container) Close() error {
	var errs error
	for _, closeFn := range c.closers {
		errs = multierr.Append(errs, closeFn())
	}
	return errs
}
