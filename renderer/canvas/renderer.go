package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/slip/fonts"
	"github.com/ByLCY/slip/layout"
	"github.com/ByLCY/slip/renderer"
)

const mmPerInch = 25.4

// Renderer draws layout plans via github.com/tdewolff/canvas into a PDF of
// the physical paper size.
type Renderer struct {
	fonts fonts.Pair
	title string

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	Fonts fonts.Pair // 与光栅化使用同一对字体；为空时使用内置字体
	Title string
}

// NewRenderer creates a renderer with the built-in fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected fonts.
func NewRendererWithOptions(opts Options) *Renderer {
	pair := opts.Fonts
	if len(pair.Regular) == 0 {
		pair = fonts.Builtin()
	}
	if len(pair.Bold) == 0 {
		pair.Bold = pair.Regular
	}
	title := opts.Title
	if title == "" {
		title = "receipt"
	}
	return &Renderer{fonts: pair, title: title}
}

// Render renders the plan into a PDF byte slice.
func (r *Renderer) Render(plan *layout.Plan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("排版计划为空")
	}
	geom := plan.Geometry
	if geom.DPI <= 0 || geom.WidthPx <= 0 || geom.HeightPx <= 0 {
		return nil, fmt.Errorf("%w: 画布尺寸 %dx%d@%gdpi 无效", layout.ErrInvalidLayoutParameter, geom.WidthPx, geom.HeightPx, geom.DPI)
	}
	family, err := r.fontFamily()
	if err != nil {
		return nil, err
	}

	width, height := toMm(float64(geom.WidthPx), geom.DPI), toMm(float64(geom.HeightPx), geom.DPI)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(r.title, "", "", "", "slip")

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与画布保持左上角为原点
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	for i, op := range plan.Ops {
		switch op.Kind {
		case layout.OpText:
			r.drawText(ctx, family, op, geom.DPI)
		case layout.OpLine:
			drawLine(ctx, op, geom.DPI)
		default:
			return nil, fmt.Errorf("第 %d 条绘制指令类型 %d 未知", i, op.Kind)
		}
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText 将行顶部 y 加上字体上升部作为基线，与光栅化保持一致。
func (r *Renderer) drawText(ctx *canvas.Context, family *canvas.FontFamily, op layout.DrawOp, dpi float64) {
	style := canvas.FontRegular
	if op.Weight == layout.Bold {
		style = canvas.FontBold
	}
	face := family.Face(toPt(op.Scale, dpi), colorFromLayout(layout.Ink), style, canvas.FontNormal)
	line := canvas.NewTextLine(face, op.Text, canvas.Left)
	baseline := toMm(float64(op.Y), dpi) + face.Metrics().Ascent
	ctx.DrawText(toMm(float64(op.X), dpi), baseline, line)
}

// drawLine 绘制一像素高的分隔线，端点包含在内。
func drawLine(ctx *canvas.Context, op layout.DrawOp, dpi float64) {
	px := toMm(1, dpi)
	ctx.SetFillColor(colorFromLayout(layout.Ink))
	ctx.SetStrokeColor(canvas.Transparent)
	x0 := toMm(float64(op.X), dpi)
	w := toMm(float64(op.X2-op.X+1), dpi)
	ctx.DrawPath(x0, toMm(float64(op.Y), dpi), canvas.Rectangle(w, px))
}

func (r *Renderer) fontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}
	name := r.fonts.Name
	if name == "" {
		name = "slip"
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(r.fonts.Regular, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("%w: 加载常规字体失败: %v", fonts.ErrGlyphMetricsUnavailable, err)
	}
	if err := family.LoadFont(r.fonts.Bold, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("%w: 加载粗体字体失败: %v", fonts.ErrGlyphMetricsUnavailable, err)
	}
	r.family = family
	return family, nil
}

func colorFromLayout(c color.RGBA) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}

// toMm 将像素转换为毫米。
func toMm(px, dpi float64) float64 { return px / dpi * mmPerInch }

// toPt 将像素字号转换为点(pt)。
func toPt(px, dpi float64) float64 { return px / dpi * 72 }
