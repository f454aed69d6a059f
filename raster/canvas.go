package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/ByLCY/slip/layout"
)

// TextDrawer rasterizes a glyph run into an image.
type TextDrawer interface {
	Draw(dst draw.Image, x, y int, scale float64, weight layout.Weight, text string, c color.Color) error
}

// Canvas 是一张固定尺寸的 RGBA 位图，创建时填充为全白。
// 画布只由一次渲染独占，不支持并发绘制；超出边界的像素会被直接裁掉。
type Canvas struct {
	img  *image.RGBA
	text TextDrawer
}

var _ layout.Surface = (*Canvas)(nil)

// NewCanvas 分配 width×height 的白色画布。
func NewCanvas(width, height int, text TextDrawer) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return &Canvas{img: img, text: text}
}

// Image 返回底层位图（按行主序、自上而下）。
func (c *Canvas) Image() *image.RGBA { return c.img }

// Width 返回画布宽度（像素）。
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height 返回画布高度（像素）。
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// DrawTextRun 实现 layout.Surface。
func (c *Canvas) DrawTextRun(x, y int, scale float64, weight layout.Weight, text string, col color.Color) error {
	if text == "" || c.text == nil {
		return nil
	}
	return c.text.Draw(c.img, x, y, scale, weight, text, col)
}

// DrawHorizontalLine 绘制 1 像素高、包含两端点的水平线。
func (c *Canvas) DrawHorizontalLine(x0, x1, y int, col color.Color) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	r := image.Rect(x0, y, x1+1, y+1).Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// Cropped 返回从顶部到 height 的子图，height 超出画布时取整张画布。
func (c *Canvas) Cropped(height int) *image.RGBA {
	if height <= 0 || height >= c.Height() {
		return c.img
	}
	return c.img.SubImage(image.Rect(0, 0, c.Width(), height)).(*image.RGBA)
}

// Render 是排版与栅格化的入口：先整体排版校验，再分配画布并绘制。
// 排版失败时不会分配画布。
func Render(doc layout.Document, geom layout.Geometry, glyphs *Glyphs, opts layout.Options) (*Canvas, *layout.Plan, error) {
	if glyphs == nil {
		return nil, nil, fmt.Errorf("raster: 缺少字体 Glyphs")
	}
	plan, err := layout.Layout(doc, geom, glyphs, opts)
	if err != nil {
		return nil, nil, err
	}
	c := NewCanvas(geom.WidthPx, geom.HeightPx, glyphs)
	if err := layout.Paint(plan, c); err != nil {
		return nil, nil, err
	}
	return c, plan, nil
}
