package layout

import "fmt"

// Layout 按文档顺序计算每个元素的绝对坐标，返回绘制指令与最终的 current_y。
// 所有参数先整体校验，任何一处非法都不会产生指令。
// current_y 超出画布高度不是错误：超出部分会在绘制时被画布裁掉。
func Layout(doc Document, geom Geometry, metrics Metrics, opts Options) (*Plan, error) {
	if metrics == nil {
		return nil, fmt.Errorf("layout: 缺少字形度量 Metrics")
	}
	if geom.DPI <= 0 {
		return nil, fmt.Errorf("%w: DPI 必须为正数", ErrInvalidLayoutParameter)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	pitch := 0
	if opts.Advance == AdvanceFixedPitch {
		if opts.NominalLineHeight <= 0 {
			return nil, fmt.Errorf("%w: 固定行距需要正的 NominalLineHeight", ErrInvalidLayoutParameter)
		}
		pitch = roundPx(LinePitchPx(opts.NominalLineHeight, geom.DPI))
	}

	plan := &Plan{
		Geometry: geom,
		Ops:      make([]DrawOp, 0, len(doc.Elements)),
		StartY:   opts.StartY,
	}
	y := opts.StartY
	for i, el := range doc.Elements {
		switch el.Kind {
		case KindText:
			scale := PointsToPixels(el.PointSize, geom.DPI)
			width, err := metrics.Measure(el.Content, el.Weight, scale)
			if err != nil {
				return nil, fmt.Errorf("测量第 %d 行文本失败: %w", i, err)
			}
			x := originX(el, width, geom)
			op := DrawOp{Kind: OpText, X: x, Y: y, Text: el.Content, Scale: scale, Weight: el.Weight, Width: width}
			plan.Ops = append(plan.Ops, op)
			if el.SimulatedBold {
				op.X = x + 1
				plan.Ops = append(plan.Ops, op)
			}
			if opts.Advance == AdvanceFixedPitch {
				y += pitch
			} else {
				y += roundPx(scale)
			}
		case KindRule:
			plan.Ops = append(plan.Ops, DrawOp{
				Kind: OpLine,
				X:    geom.LeftMarginPx,
				X2:   geom.PrintableWidthPx - geom.RightMarginPx,
				Y:    y,
			})
		case KindSpace:
			y += el.AmountPx
		}
	}
	plan.EndY = y
	return plan, nil
}

// Validate 检查文档中每个元素的参数。
func Validate(doc Document) error {
	for i, el := range doc.Elements {
		switch el.Kind {
		case KindText:
			if el.PointSize <= 0 {
				return fmt.Errorf("%w: 第 %d 行字号 %g 必须为正数", ErrInvalidLayoutParameter, i, el.PointSize)
			}
			if el.Align < AlignLeft || el.Align > AlignRight {
				return fmt.Errorf("%w: 第 %d 行对齐方式 %s 未知", ErrInvalidLayoutParameter, i, el.Align)
			}
			if el.Weight != Regular && el.Weight != Bold {
				return fmt.Errorf("%w: 第 %d 行字重 %s 未知", ErrInvalidLayoutParameter, i, el.Weight)
			}
		case KindRule:
		case KindSpace:
			if el.AmountPx < 0 {
				return fmt.Errorf("%w: 第 %d 个留白 %dpx 不能为负", ErrInvalidLayoutParameter, i, el.AmountPx)
			}
		default:
			return fmt.Errorf("%w: 第 %d 个元素类型 %s 未知", ErrInvalidLayoutParameter, i, el.Kind)
		}
	}
	return nil
}

func originX(el Element, width int, geom Geometry) int {
	switch el.Align {
	case AlignCenter:
		// 居中以可打印宽度为基准，不计左边距；整数除法向零取整。
		return (geom.PrintableWidthPx - width) / 2
	case AlignRight:
		return geom.PrintableWidthPx - width - geom.RightMarginPx - el.IndentPx
	default:
		return geom.LeftMarginPx + el.IndentPx
	}
}

// Paint 将指令依次绘制到 surface 上。
func Paint(plan *Plan, surface Surface) error {
	if plan == nil {
		return nil
	}
	for _, op := range plan.Ops {
		switch op.Kind {
		case OpText:
			if err := surface.DrawTextRun(op.X, op.Y, op.Scale, op.Weight, op.Text, Ink); err != nil {
				return err
			}
		case OpLine:
			surface.DrawHorizontalLine(op.X, op.X2, op.Y, Ink)
		}
	}
	return nil
}
