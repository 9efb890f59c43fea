package describer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"led-detector/internal/domain/entity"
	"led-detector/internal/domain/port"
)

// TextDescriber формирует подпись к размеченному кадру без внешних сервисов.
type TextDescriber struct {
	// MaxListed — сколько светодиодов перечислять поимённо, 0 — не перечислять
	MaxListed int
}

// NewTextDescriber создаёт описатель, перечисляющий до maxListed светодиодов.
func NewTextDescriber(maxListed int) *TextDescriber {
	return &TextDescriber{MaxListed: maxListed}
}

// Describe возвращает подпись вида "2 red, 1 green, 0 blue" и список координат.
func (d *TextDescriber) Describe(ctx context.Context, report *entity.FrameReport) (string, error) {
	if report == nil {
		return "", errors.New("nil report")
	}
	res := report.Result

	var sb strings.Builder
	sb.WriteString(res.Counts.String())

	if res.Counts.Total() == 0 {
		sb.WriteString("\nСветящиеся светодиоды не найдены.")
	}
	if res.Aborted {
		sb.WriteString("\n⚠️ Разбор кадра остановлен на контуре нулевой площади.")
	} else if res.Degenerate > 0 {
		fmt.Fprintf(&sb, "\nПропущено вырожденных контуров: %d.", res.Degenerate)
	}

	for i, det := range res.Detections {
		if i >= d.MaxListed {
			fmt.Fprintf(&sb, "\n… и ещё %d", len(res.Detections)-i)
			break
		}
		fmt.Fprintf(&sb, "\n%d. %s (%d, %d)", i+1, det.Label, det.Centroid.X, det.Centroid.Y)
	}

	return sb.String(), nil
}

var _ port.ResultDescriber = (*TextDescriber)(nil)
