// Package imageio загружает кадры из файлов и байтов и сохраняет размеченные кадры.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"led-detector/internal/domain/entity"
	"led-detector/internal/domain/port"
)

// ErrUnsupportedFormat возвращается для файлов, которые не являются изображениями.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DefaultJPEGQuality — качество JPEG для ответов бота.
const DefaultJPEGQuality = 90

// Load читает изображение с диска с учётом EXIF-ориентации.
func Load(path string) (*entity.Frame, error) {
	if !IsImage(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return entity.FrameFromImage(img), nil
}

// Decode читает изображение из r с учётом EXIF-ориентации.
func Decode(r io.Reader) (*entity.Frame, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return entity.FrameFromImage(img), nil
}

// DecodeBytes — Decode для содержимого в памяти.
func DecodeBytes(data []byte) (*entity.Frame, error) {
	return Decode(bytes.NewReader(data))
}

// Save записывает кадр; формат определяется по расширению path.
func Save(frame *entity.Frame, path string) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err := imaging.Save(frame, path, imaging.JPEGQuality(DefaultJPEGQuality)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// EncodeJPEG кодирует кадр в JPEG.
func EncodeJPEG(frame *entity.Frame, quality int) ([]byte, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// IsImage сообщает, похоже ли имя файла на поддерживаемое изображение.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".webp" {
		return true
	}
	_, err := imaging.FormatFromExtension(ext)
	return err == nil
}

// Codec реализует port.ImageCodec поверх функций пакета.
type Codec struct {
	Quality int // качество JPEG, 0 — DefaultJPEGQuality
}

func (c Codec) quality() int {
	if c.Quality <= 0 {
		return DefaultJPEGQuality
	}
	return c.Quality
}

func (c Codec) Decode(data []byte) (*entity.Frame, error) { return DecodeBytes(data) }

func (c Codec) Encode(frame *entity.Frame) ([]byte, error) { return EncodeJPEG(frame, c.quality()) }

func (c Codec) Load(path string) (*entity.Frame, error) { return Load(path) }

func (c Codec) Save(frame *entity.Frame, path string) error { return Save(frame, path) }

func (c Codec) Supports(path string) bool { return IsImage(path) }

var _ port.ImageCodec = Codec{}
