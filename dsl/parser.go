package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][.;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Document is the root AST node of a receipt template.
//
//	receipt "Kitchen" {
//	  text bold center size 14 "TABLE ${order.table}"
//	  rule
//	  space 20
//	  each order.items as item {
//	    text "${item.qty} ${item.name}"
//	  }
//	}
type Document struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Name       *StringLiteral `parser:"Newline* 'receipt' @String?"`
	Statements []*Statement   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Statement is one line of the receipt body.
type Statement struct {
	Pos   lexer.Position  `parser:"" json:"-"`
	Text  *TextStatement  `parser:"  @@"`
	Rule  bool            `parser:"| @'rule'"`
	Space *SpaceStatement `parser:"| @@"`
	Each  *EachStatement  `parser:"| @@"`
}

// Kind returns the human-readable statement type.
func (s *Statement) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Text != nil:
		return "text"
	case s.Rule:
		return "rule"
	case s.Space != nil:
		return "space"
	case s.Each != nil:
		return "each"
	default:
		return "unknown"
	}
}

// TextStatement 描述一行文本：若干修饰（bold、center、size 14 ...）加上一个字符串。
type TextStatement struct {
	Flags   []*Flag       `parser:"'text' @@*"`
	Content StringLiteral `parser:"@String"`
}

// Flag 是 text 的修饰，可带一个数值参数（size 14、indent 20）。
type Flag struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Value *string        `parser:"@Number?"`
}

// Number 返回修饰的数值参数。
func (f *Flag) Number() (float64, error) {
	if f.Value == nil {
		return 0, fmt.Errorf("%s: %s 缺少数值参数", f.Pos, f.Name)
	}
	v, err := strconv.ParseFloat(*f.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %s 的参数 %q 无法解析: %w", f.Pos, f.Name, *f.Value, err)
	}
	return v, nil
}

// SpaceStatement 描述纵向留白（像素）。
type SpaceStatement struct {
	Amount int `parser:"'space' @Number"`
}

// EachStatement 针对数据中的数组重复其子语句，循环变量在子语句中可用。
type EachStatement struct {
	Path       []string     `parser:"'each' @Ident ( '.' @Ident )*"`
	As         string       `parser:"'as' @Ident"`
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// DataPath returns the dotted data path being iterated.
func (e *EachStatement) DataPath() string { return strings.Join(e.Path, ".") }

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a receipt template from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a receipt template from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// ParseFile parses a receipt template, using filename in error positions.
func ParseFile(filename string, r io.Reader) (*Document, error) {
	return documentParser.Parse(filename, r)
}
