package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"led-detector/internal/domain/entity"
	"led-detector/internal/infrastructure/vision"
)

type Config struct {
	TelegramToken string
	LogLevel      string
	LogDir        string // пусто — только stdout
	DatabasePath  string // пусто — отчёты в памяти
	Workers       int
	OutputDir     string
	Vision        vision.Config
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:      getEnum("LOG_LEVEL", "info"),
		LogDir:        os.Getenv("LOG_DIR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		OutputDir:     getEnv("OUTPUT_DIR", "./annotated"),
		Vision:        vision.DefaultConfig(),
	}

	var err error
	if cfg.Workers, err = envInt("PROCESSING_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("PROCESSING_WORKERS must be positive, got %d", cfg.Workers)
	}

	if err := loadVision(&cfg.Vision); err != nil {
		return nil, err
	}
	if err := cfg.Vision.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadVision(v *vision.Config) error {
	var err error
	if v.MaskLow, err = envColor("LED_MASK_LOW", v.MaskLow); err != nil {
		return err
	}
	if v.MaskHigh, err = envColor("LED_MASK_HIGH", v.MaskHigh); err != nil {
		return err
	}
	if v.KernelSize, err = envInt("LED_KERNEL_SIZE", v.KernelSize); err != nil {
		return err
	}
	if v.Iterations, err = envInt("LED_ERODE_ITERATIONS", v.Iterations); err != nil {
		return err
	}
	if v.WindowRadius, err = envInt("LED_WINDOW_RADIUS", v.WindowRadius); err != nil {
		return err
	}
	if v.MarkerHalfSize, err = envInt("LED_MARKER_HALF_SIZE", v.MarkerHalfSize); err != nil {
		return err
	}
	if v.MarkerThickness, err = envInt("LED_MARKER_THICKNESS", v.MarkerThickness); err != nil {
		return err
	}

	v.KernelShape = vision.KernelShape(getEnum("LED_KERNEL_SHAPE", string(v.KernelShape)))
	v.ErodeBorder = vision.BorderRule(getEnum("LED_ERODE_BORDER", string(v.ErodeBorder)))
	v.ContourMode = vision.ContourMode(getEnum("LED_CONTOUR_MODE", string(v.ContourMode)))
	v.DegeneratePolicy = vision.DegeneratePolicy(getEnum("LED_DEGENERATE_POLICY", string(v.DegeneratePolicy)))
	v.Backend = vision.Backend(getEnum("LED_BACKEND", string(v.Backend)))

	palette := make(map[entity.Label]color.RGBA, len(v.Palette))
	for _, l := range entity.Labels() {
		key := "LED_COLOR_" + strings.ToUpper(l.String())
		c, err := envColor(key, v.Palette[l])
		if err != nil {
			return err
		}
		palette[l] = c
	}
	v.Palette = palette
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnum(key, def string) string {
	return strings.ToLower(getEnv(key, def))
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// envColor читает цвет в виде "r,g,b".
func envColor(key string, def color.RGBA) (color.RGBA, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	c, err := ParseColor(raw)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%s: %w", key, err)
	}
	return c, nil
}

// ParseColor разбирает строку "r,g,b" с каналами 0..255.
func ParseColor(s string) (color.RGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("color %q: want r,g,b", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := cast.ToIntE(strings.TrimSpace(p))
		if err != nil {
			return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
		}
		if v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("color %q: channel %d out of range", s, v)
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
}
