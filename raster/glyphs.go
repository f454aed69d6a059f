package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/slip/fonts"
	"github.com/ByLCY/slip/layout"
)

// Glyphs measures and draws text runs with a regular/bold font pair.
// Faces are created lazily per (weight, pixel scale) and reused.
type Glyphs struct {
	regular *opentype.Font
	bold    *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
	buf   sfnt.Buffer
}

var _ layout.Metrics = (*Glyphs)(nil)

type faceKey struct {
	weight layout.Weight
	scale  float64
}

// NewGlyphs parses both fonts of the pair.
func NewGlyphs(pair fonts.Pair) (*Glyphs, error) {
	regular, err := opentype.Parse(pair.Regular)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析常规体 %s 失败: %v", fonts.ErrGlyphMetricsUnavailable, pair.Name, err)
	}
	bold, err := opentype.Parse(pair.Bold)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析粗体 %s 失败: %v", fonts.ErrGlyphMetricsUnavailable, pair.Name, err)
	}
	return &Glyphs{
		regular: regular,
		bold:    bold,
		faces:   map[faceKey]font.Face{},
	}, nil
}

// Measure implements layout.Metrics. The width is the advance of the run rounded up to whole pixels.
// A rune the font cannot map fails with fonts.ErrGlyphMetricsUnavailable instead of drawing a box.
func (g *Glyphs) Measure(text string, weight layout.Weight, scale float64) (int, error) {
	face, err := g.face(weight, scale)
	if err != nil {
		return 0, err
	}
	if err := g.covers(weight, text); err != nil {
		return 0, err
	}
	return font.MeasureString(face, text).Ceil(), nil
}

// covers 检查字体是否包含 text 中每个字符的字形；索引 0 是 .notdef。
func (g *Glyphs) covers(weight layout.Weight, text string) error {
	src := g.regular
	if weight == layout.Bold {
		src = g.bold
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range text {
		idx, err := src.GlyphIndex(&g.buf, r)
		if err != nil {
			return fmt.Errorf("%w: 查找字符 %q 失败: %v", fonts.ErrGlyphMetricsUnavailable, r, err)
		}
		if idx == 0 {
			return fmt.Errorf("%w: %s 字体缺少字符 %q（%q）", fonts.ErrGlyphMetricsUnavailable, weight, r, text)
		}
	}
	return nil
}

// Draw paints text with its top-left corner at (x, y); the baseline sits one ascent below y.
func (g *Glyphs) Draw(dst draw.Image, x, y int, scale float64, weight layout.Weight, text string, c color.Color) error {
	face, err := g.face(weight, scale)
	if err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
	}
	d.DrawString(text)
	return nil
}

// Close releases every cached face.
func (g *Glyphs) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var first error
	for key, face := range g.faces {
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
		delete(g.faces, key)
	}
	return first
}

func (g *Glyphs) face(weight layout.Weight, scale float64) (font.Face, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: 像素字号 %g 必须为正数", layout.ErrInvalidLayoutParameter, scale)
	}
	key := faceKey{weight: weight, scale: scale}
	g.mu.Lock()
	defer g.mu.Unlock()
	if face, ok := g.faces[key]; ok {
		return face, nil
	}
	src := g.regular
	if weight == layout.Bold {
		src = g.bold
	}
	// DPI 72 makes Size equal to the pixel size of one em.
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: 创建字号 %g 的字体面失败: %v", fonts.ErrGlyphMetricsUnavailable, scale, err)
	}
	g.faces[key] = face
	return face, nil
}
