package entity

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Label — цвет светодиода.
type Label int

const (
	LabelBlue Label = iota
	LabelGreen
	LabelRed
)

// labelPrecedence — таблица разрешения ничьих: выигрывает первый канал,
// значение которого не меньше двух других. Синий, затем зелёный, затем красный.
var labelPrecedence = [...]Label{LabelBlue, LabelGreen, LabelRed}

// Labels возвращает все метки в порядке приоритета.
func Labels() []Label {
	out := make([]Label, len(labelPrecedence))
	copy(out, labelPrecedence[:])
	return out
}

func (l Label) String() string {
	switch l {
	case LabelBlue:
		return "blue"
	case LabelGreen:
		return "green"
	case LabelRed:
		return "red"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// ParseLabel разбирает "red", "green" или "blue" без учёта регистра.
func ParseLabel(s string) (Label, error) {
	for _, l := range labelPrecedence {
		if strings.EqualFold(strings.TrimSpace(s), l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown label %q", s)
}

// Dominant выбирает преобладающий канал по таблице labelPrecedence.
// Красный выигрывает только если строго больше синего и зелёного.
func Dominant(blue, green, red int) Label {
	values := [...]int{LabelBlue: blue, LabelGreen: green, LabelRed: red}
	for _, l := range labelPrecedence {
		if isMax(values[l], values[:]) {
			return l
		}
	}
	// недостижимо: максимум всегда существует
	return LabelRed
}

func isMax(v int, all []int) bool {
	for _, o := range all {
		if o > v {
			return false
		}
	}
	return true
}

// Votes — голоса пикселей окна за каждый канал.
type Votes struct {
	Blue  int
	Green int
	Red   int
}

// Add учитывает один голос.
func (v *Votes) Add(l Label) {
	switch l {
	case LabelBlue:
		v.Blue++
	case LabelGreen:
		v.Green++
	case LabelRed:
		v.Red++
	}
}

// Total возвращает число проголосовавших пикселей.
func (v Votes) Total() int {
	return v.Blue + v.Green + v.Red
}

// Winner применяет ту же таблицу приоритетов к счётчикам голосов.
func (v Votes) Winner() Label {
	return Dominant(v.Blue, v.Green, v.Red)
}

// Detection — один найденный светодиод.
type Detection struct {
	Centroid image.Point // центр масс контура
	Label    Label       // цвет
	Votes    Votes       // голоса окна вокруг центра
}

// Counts — число светодиодов каждого цвета в одном кадре.
type Counts struct {
	Red   int
	Green int
	Blue  int
}

// Add увеличивает счётчик метки.
func (c *Counts) Add(l Label) {
	switch l {
	case LabelRed:
		c.Red++
	case LabelGreen:
		c.Green++
	case LabelBlue:
		c.Blue++
	}
}

// Get возвращает счётчик метки.
func (c Counts) Get(l Label) int {
	switch l {
	case LabelRed:
		return c.Red
	case LabelGreen:
		return c.Green
	case LabelBlue:
		return c.Blue
	}
	return 0
}

// Merge складывает счётчики.
func (c Counts) Merge(o Counts) Counts {
	return Counts{Red: c.Red + o.Red, Green: c.Green + o.Green, Blue: c.Blue + o.Blue}
}

// Total возвращает общее число светодиодов.
func (c Counts) Total() int {
	return c.Red + c.Green + c.Blue
}

func (c Counts) String() string {
	return fmt.Sprintf("%d red, %d green, %d blue", c.Red, c.Green, c.Blue)
}

// DetectionResult хранит итог обработки одного кадра.
type DetectionResult struct {
	Width      int         // ширина кадра
	Height     int         // высота кадра
	Detections []Detection // найденные светодиоды
	Counts     Counts      // счётчики по цветам, только для этого кадра
	Contours   int         // сколько контуров нашлось после эрозии
	Degenerate int         // сколько контуров с нулевой площадью пропущено
	Aborted    bool        // обработка остановлена на вырожденном контуре
}

// FrameReport — запись об обработанном кадре для хранилища.
type FrameReport struct {
	ID          uuid.UUID
	Source      string
	ProcessedAt time.Time
	Result      DetectionResult
}

// NewFrameReport создаёт отчёт с новым идентификатором.
func NewFrameReport(source string, result DetectionResult) *FrameReport {
	return &FrameReport{
		ID:          uuid.New(),
		Source:      source,
		ProcessedAt: time.Now().UTC(),
		Result:      result,
	}
}
