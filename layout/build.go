package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/slip/binding"
	"github.com/ByLCY/slip/dsl"
)

// BuildOptions 提供模板中未显式声明时使用的默认值。
type BuildOptions struct {
	DefaultSize   float64 // 未写 size 时的字号
	SimulatedBold bool    // 未写 double/single 时是否双击加粗
}

// Build 将模板 AST 与绑定数据展开为小票文档。
func Build(doc *dsl.Document, data any, opts BuildOptions) (Document, error) {
	if doc == nil {
		return Document{}, fmt.Errorf("模板为空")
	}
	if opts.DefaultSize <= 0 {
		return Document{}, fmt.Errorf("%w: 默认字号必须为正数", ErrInvalidLayoutParameter)
	}
	var elems []Element
	if err := buildStatements(doc.Statements, data, opts, &elems); err != nil {
		return Document{}, err
	}
	return NewDocument(elems...), nil
}

func buildStatements(stmts []*dsl.Statement, data any, opts BuildOptions, out *[]Element) error {
	for _, st := range stmts {
		switch {
		case st.Text != nil:
			el, keep, err := buildText(st.Text, data, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", st.Pos, err)
			}
			if keep {
				*out = append(*out, el)
			}
		case st.Rule:
			*out = append(*out, Rule())
		case st.Space != nil:
			*out = append(*out, Space(st.Space.Amount))
		case st.Each != nil:
			items, err := binding.Items(data, st.Each.DataPath())
			if err != nil {
				return fmt.Errorf("%s: each: %w", st.Pos, err)
			}
			for _, item := range items {
				if err := buildStatements(st.Each.Statements, binding.Scope(data, st.Each.As, item), opts, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildText 返回的 keep 为 false 时表示 optional 行展开后为空，应整行省略。
func buildText(st *dsl.TextStatement, data any, opts BuildOptions) (Element, bool, error) {
	el := Text(binding.Interpolate(string(st.Content), data), opts.DefaultSize, Regular, AlignLeft, 0)
	el.SimulatedBold = opts.SimulatedBold
	optional := false
	for _, f := range st.Flags {
		switch name := strings.ToLower(f.Name); name {
		case "bold":
			el.Weight = Bold
		case "regular":
			el.Weight = Regular
		case "left", "center", "centre", "right":
			align, err := ParseAlign(name)
			if err != nil {
				return Element{}, false, err
			}
			el.Align = align
		case "size":
			v, err := f.Number()
			if err != nil {
				return Element{}, false, err
			}
			if v <= 0 {
				return Element{}, false, fmt.Errorf("%w: 字号 %g 必须为正数", ErrInvalidLayoutParameter, v)
			}
			el.PointSize = v
		case "indent":
			v, err := f.Number()
			if err != nil {
				return Element{}, false, err
			}
			el.IndentPx = int(v)
		case "double":
			el.SimulatedBold = true
		case "single":
			el.SimulatedBold = false
		case "optional":
			optional = true
		default:
			return Element{}, false, fmt.Errorf("%w: 未知的 text 修饰 %q", ErrInvalidLayoutParameter, f.Name)
		}
	}
	if optional && strings.TrimSpace(el.Content) == "" {
		return el, false, nil
	}
	return el, true, nil
}
