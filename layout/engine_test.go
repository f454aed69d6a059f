package layout

import (
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// stubMetrics 是测试用的最小度量：每个字符占 scale/2 像素（取整），不依赖真实字体。
type stubMetrics struct {
	calls int
}

func (s *stubMetrics) Measure(text string, weight Weight, scale float64) (int, error) {
	s.calls++
	return len([]rune(text)) * int(scale/2), nil
}

type failingMetrics struct{}

func (failingMetrics) Measure(string, Weight, float64) (int, error) {
	return 0, errors.New("no glyphs")
}

// recordingSurface 记录 Paint 的每一次调用。
type recordingSurface struct {
	calls []string
}

func (r *recordingSurface) DrawTextRun(x, y int, scale float64, weight Weight, text string, c color.Color) error {
	r.calls = append(r.calls, fmt.Sprintf("text %d,%d %s %q", x, y, weight, text))
	return nil
}

func (r *recordingSurface) DrawHorizontalLine(x0, x1, y int, c color.Color) {
	r.calls = append(r.calls, fmt.Sprintf("line %d-%d@%d", x0, x1, y))
}

func receiptGeometry(t *testing.T) Geometry {
	t.Helper()
	g, err := NewGeometry(3.125, 203, 1000, 58, 10, 10)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	return g
}

// TestCenteredBoldScenario: 203DPI、3.125 英寸画布上居中的 "TABLE M1"，双击加粗并推进 45px。
func TestCenteredBoldScenario(t *testing.T) {
	g := receiptGeometry(t)
	doc := NewDocument(Text("TABLE M1", 12, Bold, AlignCenter, 0).WithSimulatedBold(true))
	plan, err := Layout(doc, g, &stubMetrics{}, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	width := 8 * int(PointsToPixels(12, 203)/2)
	x := (g.PrintableWidthPx - width) / 2
	want := []DrawOp{
		{Kind: OpText, X: x, Y: 0, Text: "TABLE M1", Scale: PointsToPixels(12, 203), Weight: Bold, Width: width},
		{Kind: OpText, X: x + 1, Y: 0, Text: "TABLE M1", Scale: PointsToPixels(12, 203), Weight: Bold, Width: width},
	}
	if diff := cmp.Diff(want, plan.Ops); diff != "" {
		t.Fatalf("ops mismatch (-want +got):\n%s", diff)
	}
	if plan.EndY != 45 {
		t.Fatalf("EndY = %d, want 45", plan.EndY)
	}
}

func TestSimulatedBoldIsExplicit(t *testing.T) {
	g := receiptGeometry(t)
	doc := NewDocument(Text("plain bold", 12, Bold, AlignLeft, 0))
	plan, err := Layout(doc, g, &stubMetrics{}, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(plan.Ops) != 1 {
		t.Fatalf("未开启 SimulatedBold 时只应绘制一次，实际 %d 次", len(plan.Ops))
	}
	if plan.Ops[0].Weight != Bold {
		t.Fatalf("字重应保留为 bold")
	}
}

// TestCenterSymmetry: 居中文本两侧到 printable/2 的距离误差不超过 1px。
func TestCenterSymmetry(t *testing.T) {
	g := receiptGeometry(t)
	for _, content := range []string{"", "a", "ab", "odd", "ORDER #1-1", "Invoice #1    Mon, 9/23/2024 6:37 PM"} {
		for _, size := range []float64{7, 12, 14, 16} {
			plan, err := Layout(NewDocument(Text(content, size, Regular, AlignCenter, 0)), g, &stubMetrics{}, Options{})
			if err != nil {
				t.Fatalf("Layout: %v", err)
			}
			op := plan.Ops[0]
			left := op.X
			right := g.PrintableWidthPx - (op.X + op.Width)
			if d := left - right; d < -1 || d > 1 {
				t.Fatalf("%q@%g 不对称: left=%d right=%d", content, size, left, right)
			}
		}
	}
}

// TestCenterTruncatesTowardZero 文本比可打印宽度还宽时 x 为负，向零取整。
func TestCenterTruncatesTowardZero(t *testing.T) {
	g := Geometry{WidthPx: 100, HeightPx: 100, DPI: 54, PrintableWidthPx: 100}
	m := &fixedMetrics{width: 103}
	plan, err := Layout(NewDocument(Text("wide", 1, Regular, AlignCenter, 0)), g, m, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if plan.Ops[0].X != -1 {
		t.Fatalf("(100-103)/2 应向零取整为 -1，实际 %d", plan.Ops[0].X)
	}
}

type fixedMetrics struct{ width int }

func (f *fixedMetrics) Measure(string, Weight, float64) (int, error) { return f.width, nil }

func TestRightAlignmentExact(t *testing.T) {
	g := receiptGeometry(t)
	for _, indent := range []int{0, 5, 33} {
		doc := NewDocument(Text("Printed 6:37 PM", 12, Regular, AlignRight, indent))
		plan, err := Layout(doc, g, &stubMetrics{}, Options{})
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		op := plan.Ops[0]
		if got := op.X + op.Width + g.RightMarginPx + indent; got != g.PrintableWidthPx {
			t.Fatalf("indent=%d: x+width+right+indent = %d, want %d", indent, got, g.PrintableWidthPx)
		}
	}
}

func TestLeftAlignmentUsesMarginAndIndent(t *testing.T) {
	g := receiptGeometry(t)
	plan, err := Layout(NewDocument(Text("1 Yes", 12, Regular, AlignLeft, 20)), g, &stubMetrics{}, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if plan.Ops[0].X != g.LeftMarginPx+20 {
		t.Fatalf("x = %d, want %d", plan.Ops[0].X, g.LeftMarginPx+20)
	}
}

// TestConsecutiveLinesAdvance: N 行同字号文本后 current_y = StartY + N × 行高。
func TestConsecutiveLinesAdvance(t *testing.T) {
	g := receiptGeometry(t)
	const start = 10
	for n := 0; n <= 12; n++ {
		elems := make([]Element, n)
		for i := range elems {
			elems[i] = Text(fmt.Sprintf("line %d", i), 12, Regular, AlignLeft, 0)
		}
		plan, err := Layout(NewDocument(elems...), g, &stubMetrics{}, Options{StartY: start})
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		if want := start + n*roundPx(PointsToPixels(12, g.DPI)); plan.EndY != want {
			t.Fatalf("n=%d: EndY = %d, want %d", n, plan.EndY, want)
		}
		for i, op := range plan.Ops {
			if want := start + i*45; op.Y != want {
				t.Fatalf("n=%d: op %d y=%d, want %d", n, i, op.Y, want)
			}
		}
	}
}

func TestFixedPitchAdvance(t *testing.T) {
	g := receiptGeometry(t)
	doc := NewDocument(
		Text("Kitchen #1", 16, Bold, AlignLeft, 0),
		Text("1 Diet Coke", 12, Regular, AlignLeft, 0),
	)
	plan, err := Layout(doc, g, &stubMetrics{}, Options{Advance: AdvanceFixedPitch, NominalLineHeight: 20, StartY: 10})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	pitch := roundPx(LinePitchPx(20, 203)) // 56
	if plan.Ops[1].Y != 10+pitch || plan.EndY != 10+2*pitch {
		t.Fatalf("固定行距推进错误: ops=%+v endY=%d pitch=%d", plan.Ops, plan.EndY, pitch)
	}

	if _, err := Layout(doc, g, &stubMetrics{}, Options{Advance: AdvanceFixedPitch}); !errors.Is(err, ErrInvalidLayoutParameter) {
		t.Fatalf("缺少 NominalLineHeight 应报 ErrInvalidLayoutParameter，实际 %v", err)
	}
}

func TestEmptyContentStillAdvances(t *testing.T) {
	g := receiptGeometry(t)
	plan, err := Layout(NewDocument(Text("", 12, Regular, AlignLeft, 0)), g, &stubMetrics{}, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if plan.EndY != 45 {
		t.Fatalf("空行也应推进 45px，实际 %d", plan.EndY)
	}
}

func TestRuleKeepsCursor(t *testing.T) {
	g := receiptGeometry(t)
	doc := NewDocument(Space(30), Rule(), Rule(), Space(5))
	plan, err := Layout(doc, g, &stubMetrics{}, Options{StartY: 10})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if plan.EndY != 45 {
		t.Fatalf("EndY = %d, want 45", plan.EndY)
	}
	want := DrawOp{Kind: OpLine, X: 10, X2: g.PrintableWidthPx - 10, Y: 40}
	for _, op := range plan.Ops {
		if diff := cmp.Diff(want, op); diff != "" {
			t.Fatalf("rule mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	g := receiptGeometry(t)
	m := &stubMetrics{}
	plan, err := Layout(Document{}, g, m, Options{StartY: 10})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(plan.Ops) != 0 || plan.EndY != 10 {
		t.Fatalf("空文档不应产生指令: %+v", plan)
	}
}

func TestInvalidParametersProduceNoOps(t *testing.T) {
	g := receiptGeometry(t)
	cases := map[string]Document{
		"zero size":      NewDocument(Text("ok", 12, Regular, AlignLeft, 0), Text("bad", 0, Regular, AlignLeft, 0)),
		"negative size":  NewDocument(Text("bad", -3, Regular, AlignLeft, 0)),
		"unknown align":  NewDocument(Text("bad", 12, Regular, Align(9), 0)),
		"unknown weight": NewDocument(Text("bad", 12, Weight(4), AlignLeft, 0)),
		"negative space": NewDocument(Space(-1)),
		"unknown kind":   NewDocument(Element{Kind: Kind(7)}),
	}
	for name, doc := range cases {
		m := &stubMetrics{}
		plan, err := Layout(doc, g, m, Options{})
		if !errors.Is(err, ErrInvalidLayoutParameter) {
			t.Fatalf("%s: 期望 ErrInvalidLayoutParameter，实际 %v", name, err)
		}
		if plan != nil || m.calls != 0 {
			t.Fatalf("%s: 校验失败前不应测量或产生指令", name)
		}
	}
}

func TestMeasureErrorIsWrapped(t *testing.T) {
	g := receiptGeometry(t)
	_, err := Layout(NewDocument(Text("x", 12, Regular, AlignLeft, 0)), g, failingMetrics{}, Options{})
	if err == nil || errors.Is(err, ErrInvalidLayoutParameter) {
		t.Fatalf("度量失败应原样上报，实际 %v", err)
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	g := receiptGeometry(t)
	doc := NewDocument(
		Text("Kitchen #1", 16, Bold, AlignLeft, 0).WithSimulatedBold(true),
		Space(20),
		Text("TABLE M1", 14, Bold, AlignCenter, 0),
		Rule(),
		Text("Printed 6:37 PM", 12, Regular, AlignRight, 0),
	)
	a, err := Layout(doc, g, &stubMetrics{}, Options{StartY: 10})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	b, err := Layout(doc, g, &stubMetrics{}, Options{StartY: 10})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("两次排版结果不同:\n%s", diff)
	}
}

func TestPaintReplaysOps(t *testing.T) {
	g := receiptGeometry(t)
	doc := NewDocument(
		Text("AB", 12, Bold, AlignLeft, 0).WithSimulatedBold(true),
		Rule(),
	)
	plan, err := Layout(doc, g, &stubMetrics{}, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	s := &recordingSurface{}
	if err := Paint(plan, s); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	want := []string{
		`text 10,0 bold "AB"`,
		`text 11,0 bold "AB"`,
		"line 10-566@45",
	}
	if diff := cmp.Diff(want, s.calls); diff != "" {
		t.Fatalf("paint calls mismatch (-want +got):\n%s", diff)
	}
}
