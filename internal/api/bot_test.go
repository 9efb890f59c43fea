package telegram

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"led-detector/internal/domain/entity"
)

func TestFormatStats(t *testing.T) {
	text := formatStats(entity.Counts{Red: 3, Green: 1}, nil)
	require.Equal(t, "📊 Всего: 3 red, 1 green, 0 blue\nОбработанных кадров пока нет.", text)

	at := time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC)
	text = formatStats(entity.Counts{Blue: 2}, []entity.FrameReport{
		{ProcessedAt: at, Result: entity.DetectionResult{Counts: entity.Counts{Blue: 2}}},
	})
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "• 08.03 09:30 — 0 red, 0 green, 2 blue", lines[3])
}

func TestIsImageDocument(t *testing.T) {
	require.True(t, isImageDocument(&tgbotapi.Document{MimeType: "image/png"}))
	require.False(t, isImageDocument(&tgbotapi.Document{MimeType: "application/pdf"}))
}
