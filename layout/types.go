package layout

import (
	"fmt"
	"strings"
)

// 该文件定义小票文档、画布几何与排版结果，供排版、栅格化、预览与调试 JSON 共用。

// Kind 区分文档元素的类型。
type Kind int

const (
	KindText  Kind = iota // 一行文本
	KindRule              // 通栏分隔线
	KindSpace             // 纵向留白
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRule:
		return "rule"
	case KindSpace:
		return "space"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Weight 为字重，对应字体对中的常规体与粗体。
type Weight int

const (
	Regular Weight = iota
	Bold
)

func (w Weight) String() string {
	switch w {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	default:
		return fmt.Sprintf("weight(%d)", int(w))
	}
}

// Align 为文本的水平对齐方式。
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return fmt.Sprintf("align(%d)", int(a))
	}
}

// ParseAlign 解析 left/center/right（兼容 start/end）。
func ParseAlign(v string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	default:
		return AlignLeft, fmt.Errorf("%w: 未知的对齐方式 %q", ErrInvalidLayoutParameter, v)
	}
}

// Element 是文档中的一个元素：文本行、分隔线或留白。
// 只有与 Kind 对应的字段有意义。
type Element struct {
	Kind Kind `json:"kind"`

	// KindText
	Content   string  `json:"content,omitempty"`
	PointSize float64 `json:"pointSize,omitempty"`
	Weight    Weight  `json:"weight,omitempty"`
	Align     Align   `json:"align,omitempty"`
	IndentPx  int     `json:"indentPx,omitempty"`
	// SimulatedBold 时同一行文字在 x 与 x+1 处各绘制一次。
	SimulatedBold bool `json:"simulatedBold,omitempty"`

	// KindSpace
	AmountPx int `json:"amountPx,omitempty"`
}

// Text 构造一行文本。
func Text(content string, size float64, weight Weight, align Align, indent int) Element {
	return Element{
		Kind:      KindText,
		Content:   content,
		PointSize: size,
		Weight:    weight,
		Align:     align,
		IndentPx:  indent,
	}
}

// Rule 构造一条分隔线。
func Rule() Element { return Element{Kind: KindRule} }

// Space 构造一段纵向留白。
func Space(px int) Element { return Element{Kind: KindSpace, AmountPx: px} }

// WithSimulatedBold 返回开启（或关闭）双击加粗后的副本。
func (e Element) WithSimulatedBold(on bool) Element {
	e.SimulatedBold = on
	return e
}

// Document 是按顺序排列的元素，构造后不再修改。
type Document struct {
	Elements []Element `json:"elements"`
}

// NewDocument 复制元素切片，避免调用方后续修改影响文档。
func NewDocument(elems ...Element) Document {
	out := make([]Element, len(elems))
	copy(out, elems)
	return Document{Elements: out}
}

// Geometry 描述一次渲染的画布尺寸（单位：像素）。
type Geometry struct {
	WidthPx          int     `json:"widthPx"`
	HeightPx         int     `json:"heightPx"`
	DPI              float64 `json:"dpi"`
	PrintableWidthPx int     `json:"printableWidthPx"`
	LeftMarginPx     int     `json:"leftMarginPx"`
	RightMarginPx    int     `json:"rightMarginPx"`
}

// NewGeometry 由纸宽（英寸）与 DPI 推导画布宽度，并扣除打印机保留的不可打印边距。
func NewGeometry(paperWidthInches, dpi float64, heightPx, reservedMarginPx, leftMarginPx, rightMarginPx int) (Geometry, error) {
	if paperWidthInches <= 0 || dpi <= 0 || heightPx <= 0 {
		return Geometry{}, fmt.Errorf("%w: 纸宽、DPI 与画布高度必须为正数", ErrInvalidLayoutParameter)
	}
	width := CanvasWidthPx(paperWidthInches, dpi)
	printable := PrintableWidthPx(width, reservedMarginPx)
	if printable <= 0 || reservedMarginPx < 0 {
		return Geometry{}, fmt.Errorf("%w: 保留边距 %dpx 超出画布宽度 %dpx", ErrInvalidLayoutParameter, reservedMarginPx, width)
	}
	if leftMarginPx < 0 || rightMarginPx < 0 {
		return Geometry{}, fmt.Errorf("%w: 左右边距不能为负", ErrInvalidLayoutParameter)
	}
	return Geometry{
		WidthPx:          width,
		HeightPx:         heightPx,
		DPI:              dpi,
		PrintableWidthPx: printable,
		LeftMarginPx:     leftMarginPx,
		RightMarginPx:    rightMarginPx,
	}, nil
}

// PrintScale 返回可打印宽度与画布宽度之比，供位图传输时缩放目标矩形。
func (g Geometry) PrintScale() float64 {
	if g.WidthPx <= 0 {
		return 1
	}
	return float64(g.PrintableWidthPx) / float64(g.WidthPx)
}

// OpKind 区分绘制指令。
type OpKind int

const (
	OpText OpKind = iota
	OpLine
)

// DrawOp 是一条已经计算好绝对像素坐标的绘制指令。
type DrawOp struct {
	Kind OpKind `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	// OpLine 的终点横坐标
	X2 int `json:"x2,omitempty"`
	// OpText
	Text   string  `json:"text,omitempty"`
	Scale  float64 `json:"scale,omitempty"` // 像素字号
	Weight Weight  `json:"weight,omitempty"`
	Width  int     `json:"width,omitempty"` // 测得的文本宽度
}

// Plan 保存一次排版的全部绘制指令。
type Plan struct {
	Geometry Geometry `json:"geometry"`
	Ops      []DrawOp `json:"ops"`
	StartY   int      `json:"startY"`
	// EndY 为处理完所有元素后的 current_y，可用于裁剪画布。
	EndY int `json:"endY"`
}
