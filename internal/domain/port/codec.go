package port

import (
	"led-detector/internal/domain/entity"
)

// ImageCodec интерфейс чтения и записи изображений
type ImageCodec interface {
	// Decode читает кадр из байтов изображения
	Decode(data []byte) (*entity.Frame, error)

	// Encode кодирует кадр для отправки пользователю
	Encode(frame *entity.Frame) ([]byte, error)

	// Load читает кадр из файла
	Load(path string) (*entity.Frame, error)

	// Save записывает кадр в файл, формат по расширению
	Save(frame *entity.Frame, path string) error

	// Supports сообщает, можно ли прочитать файл с таким именем
	Supports(path string) bool
}
