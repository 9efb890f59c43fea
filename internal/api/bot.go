package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "led-detector/internal/application"
	"led-detector/internal/container"
	"led-detector/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я считаю горящие светодиоды на фотографиях.

📸 Отправьте мне фото платы или панели, и я отмечу каждый светодиод и определю его цвет: красный, зелёный или синий.

📋 Команды:
/detect — обработать кадр
/stats — статистика по всем кадрам
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото со светодиодами (можно файлом, без сжатия)
2️⃣ Бот найдёт яркие пятна и определит цвет каждого
3️⃣ Вы получите фото с рамками и подпись вида "2 red, 1 green, 0 blue"

💡 Рекомендации:
• Снимайте в затемнённом помещении
• Светодиоды должны быть в фокусе
• Блики от фона тоже могут быть приняты за светодиоды

📋 Команды:
/detect — обработать кадр
/stats — статистика
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото со светодиодами."
	msgCancelled       = "❌ Операция отменена. Отправьте /detect для нового кадра."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото со светодиодами."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущий кадр ещё обрабатывается, подождите."
	msgNotImage        = "⚠️ Этот файл не похож на изображение."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgStatsError      = "⚠️ Не удалось получить статистику."

	statsRecent = 5
)

// Bot представляет Telegram-бота
type Bot struct {
	api    *tgbotapi.BotAPI
	app    *container.Container
	logger *zap.SugaredLogger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, logger *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	logger.Infow("authorized", "account", api.Self.UserName)

	return &Bot{
		api:    api,
		app:    c,
		logger: logger,
	}, nil
}

// Run обрабатывает сообщения, пока не завершится ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg, photo.FileID, "photo")
		return
	}

	// Изображение, отправленное файлом
	if msg.Document != nil {
		if !isImageDocument(msg.Document) {
			b.sendMessage(msg.Chat.ID, msgNotImage)
			return
		}
		b.handleImage(ctx, msg, msg.Document.FileID, msg.Document.FileName)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	users := b.app.UserService
	userID, chatID := msg.From.ID, msg.Chat.ID

	var err error
	switch msg.Command() {
	case "start":
		_, err = users.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "detect":
		_, err = users.BeginDetect(ctx, userID, chatID)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "stats":
		b.sendStats(ctx, chatID)

	case "cancel":
		_, err = users.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}

	if err != nil {
		b.logger.Warnw("update user state", "user", userID, "error", err)
	}
}

// handleImage скачивает изображение, размечает его и отправляет обратно
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID, source string) {
	users := b.app.UserService
	userID, chatID := msg.From.ID, msg.Chat.ID

	if _, err := users.StartProcessing(ctx, userID, chatID); err != nil {
		if errors.Is(err, app.ErrUserBusy) {
			b.sendMessage(chatID, msgBusy)
			return
		}
		b.logger.Warnw("update user state", "user", userID, "error", err)
		return
	}
	defer func() {
		if _, err := users.Finish(ctx, userID, chatID); err != nil {
			b.logger.Warnw("update user state", "user", userID, "error", err)
		}
	}()

	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Errorw("download photo", "user", userID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.app.DetectionService.ProcessImage(ctx, fmt.Sprintf("tg:%d:%s", chatID, source), imageData)
	if err != nil {
		b.logger.Errorw("process photo", "user", userID, "bytes", len(imageData), "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "leds.jpg", Bytes: out.Annotated})
	photo.Caption = out.Description
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Errorw("send photo", "chat", chatID, "error", err)
	}
}

// sendStats отправляет суммарные счётчики и последние кадры
func (b *Bot) sendStats(ctx context.Context, chatID int64) {
	totals, err := b.app.DetectionService.Totals(ctx)
	if err != nil {
		b.logger.Errorw("load totals", "error", err)
		b.sendMessage(chatID, msgStatsError)
		return
	}
	recent, err := b.app.DetectionService.Recent(ctx, statsRecent)
	if err != nil {
		b.logger.Errorw("load recent reports", "error", err)
		b.sendMessage(chatID, msgStatsError)
		return
	}
	b.sendMessage(chatID, formatStats(totals, recent))
}

// formatStats формирует текст ответа на /stats
func formatStats(totals entity.Counts, recent []entity.FrameReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Всего: %s", totals)
	if len(recent) == 0 {
		sb.WriteString("\nОбработанных кадров пока нет.")
		return sb.String()
	}
	sb.WriteString("\n\nПоследние кадры:")
	for _, r := range recent {
		fmt.Fprintf(&sb, "\n• %s — %s", r.ProcessedAt.Format("02.01 15:04"), r.Result.Counts)
	}
	return sb.String()
}

func isImageDocument(doc *tgbotapi.Document) bool {
	return strings.HasPrefix(doc.MimeType, "image/")
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warnw("send message", "chat", chatID, "error", err)
	}
}
