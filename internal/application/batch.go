package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"led-detector/internal/domain/entity"
	"led-detector/internal/domain/port"
)

// FileOutcome — итог обработки одного файла.
type FileOutcome struct {
	Path   string
	Output string // путь размеченной копии
	Report *entity.FrameReport
	Err    error
}

// BatchService обрабатывает файлы параллельно, по одному кадру на воркер.
type BatchService struct {
	detection *DetectionService
	codec     port.ImageCodec
	workers   int
	logger    *zap.SugaredLogger
}

// NewBatchService создаёт сервис с workers воркерами (минимум один).
func NewBatchService(detection *DetectionService, codec port.ImageCodec, workers int, logger *zap.SugaredLogger) *BatchService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &BatchService{detection: detection, codec: codec, workers: workers, logger: logger}
}

// Expand раскрывает каталоги в отсортированный список изображений в них.
// Файлы передаются как есть.
func (s *BatchService) Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && s.codec.Supports(e.Name()) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// ProcessFiles обрабатывает каждый файл целиком и пишет размеченные копии в outDir.
// Ошибка одного файла не останавливает остальные; все ошибки объединяются.
func (s *BatchService) ProcessFiles(ctx context.Context, paths []string, outDir string) ([]FileOutcome, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	outcomes := make([]FileOutcome, len(paths))
	names := outputNames(paths, outDir)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, path := range paths {
		i, path := i, path
		outcomes[i] = FileOutcome{Path: path, Output: names[i]}
		g.Go(func() error {
			outcomes[i].Report, outcomes[i].Err = s.processFile(ctx, path, names[i])
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for i := range outcomes {
		if outcomes[i].Err != nil {
			outcomes[i].Output = ""
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", outcomes[i].Path, outcomes[i].Err))
		}
	}
	return outcomes, errs
}

func (s *BatchService) processFile(ctx context.Context, path, output string) (*entity.FrameReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err := s.codec.Load(path)
	if err != nil {
		return nil, err
	}

	report, err := s.detection.ProcessFrame(ctx, filepath.Base(path), frame)
	if err != nil {
		return nil, err
	}

	if err := s.codec.Save(frame, output); err != nil {
		return nil, err
	}
	s.logger.Debugw("annotated copy saved", "path", output)
	return report, nil
}

// outputNames строит имена вида name_annotated.ext, добавляя номер при совпадении.
// WebP сохраняется в PNG.
func outputNames(paths []string, outDir string) []string {
	seen := make(map[string]int, len(paths))
	names := make([]string, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		if strings.EqualFold(ext, ".webp") || ext == "" {
			ext = ".png"
		}

		name := stem + "_annotated" + ext
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_annotated_%d%s", stem, n+1, ext)
		} else {
			seen[name] = 1
		}
		names[i] = filepath.Join(outDir, name)
	}
	return names
}
