package layout

import (
	"fmt"
	"image/color"
	"strings"
)

// Advance 选择文本行之后光标下移的策略。
type Advance int

const (
	// AdvanceFontSize 按字号推进：round(PointsToPixels(size, dpi))。
	AdvanceFontSize Advance = iota
	// AdvanceFixedPitch 按固定行距推进：round(LinePitchPx(NominalLineHeight, dpi))。
	AdvanceFixedPitch
)

// ParseAdvance 解析配置中的 size / pitch。
func ParseAdvance(v string) (Advance, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "size", "font-size":
		return AdvanceFontSize, nil
	case "pitch", "fixed", "fixed-pitch":
		return AdvanceFixedPitch, nil
	default:
		return AdvanceFontSize, fmt.Errorf("%w: 未知的行进策略 %q", ErrInvalidLayoutParameter, v)
	}
}

// Options 配置一次排版。零值可用：按字号推进、光标从 0 开始。
type Options struct {
	Advance           Advance
	NominalLineHeight float64 // AdvanceFixedPitch 使用
	StartY            int
}

// Metrics 负责测量文本在指定字体与像素字号下的宽度。
type Metrics interface {
	Measure(text string, weight Weight, scale float64) (int, error)
}

// Surface 是可被绘制的位图，Paint 会把 Plan 中的指令依次落到 Surface 上。
type Surface interface {
	DrawTextRun(x, y int, scale float64, weight Weight, text string, c color.Color) error
	DrawHorizontalLine(x0, x1, y int, c color.Color)
}

// Ink 是小票使用的唯一前景色。
var Ink = color.RGBA{A: 0xff}
