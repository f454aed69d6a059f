// Package order 描述点餐单据，并把它转换为可排版的小票文档。
package order

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidOrder 表示订单 JSON 缺少必要字段或数值非法。
var ErrInvalidOrder = errors.New("订单数据无效")

//go:embed sample.json
var sampleJSON []byte

// Order 是一张送往出单口的订单。
type Order struct {
	Station   string    `json:"station" validate:"required"`
	Table     string    `json:"table" validate:"required"`
	Number    string    `json:"number" validate:"required"`
	Invoice   string    `json:"invoice" validate:"required"`
	PlacedAt  time.Time `json:"placed_at" validate:"required"`
	PrintedAt time.Time `json:"printed_at"`
	Currency  string    `json:"currency" validate:"omitempty,max=3"`
	Items     []Item    `json:"items" validate:"required,min=1,dive"`
}

// Item 是订单中的一道菜。
type Item struct {
	Quantity  int             `json:"qty" validate:"gte=1"`
	Name      string          `json:"name" validate:"required"`
	LocalName string          `json:"local_name"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Modifiers []Modifier      `json:"modifiers" validate:"dive"`
}

// Modifier 是附加在菜品上的做法或加料。
type Modifier struct {
	Quantity int             `json:"qty" validate:"gte=1"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}

// Total returns the line total: quantity × unit price plus priced modifiers.
func (it Item) Total() decimal.Decimal {
	total := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	for _, m := range it.Modifiers {
		total = total.Add(m.Price.Mul(decimal.NewFromInt(int64(m.Quantity))))
	}
	return total
}

// Total sums all line totals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total())
	}
	return total
}

// Money formats an amount with two decimals and the order's currency prefix.
func (o *Order) Money(d decimal.Decimal) string {
	if o.Currency == "" {
		return d.StringFixed(2)
	}
	return o.Currency + " " + d.StringFixed(2)
}

// Printed returns the print timestamp, falling back to now.
func (o *Order) Printed() time.Time {
	if o.PrintedAt.IsZero() {
		return time.Now()
	}
	return o.PrintedAt
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息使用 JSON 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks required fields and numeric ranges.
func (o *Order) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		// 去掉顶层结构体名：Order.items[0].qty → items[0].qty
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		msgs = append(msgs, field+": "+message(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOrder, strings.Join(msgs, "; "))
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "不能为空"
	case "min":
		return "至少 " + e.Param() + " 项"
	case "max":
		return "最多 " + e.Param() + " 个字符"
	case "gte":
		return "必须大于等于 " + e.Param()
	default:
		return "取值无效"
	}
}

// Parse decodes and validates an order document.
func Parse(data []byte) (*Order, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var o Order
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("%w: 解析 JSON 失败: %v", ErrInvalidOrder, err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Load reads an order from a JSON file.
func Load(path string) (*Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取订单 %s 失败: %w", path, err)
	}
	return Parse(data)
}

// Sample returns the built-in kitchen order used when no input is given.
func Sample() *Order {
	o, err := Parse(sampleJSON)
	if err != nil {
		panic(err)
	}
	return o
}

// Data exposes the order to receipt templates as plain maps, so that
// ${order.table} and `each order.items as item` resolve.
func (o *Order) Data() map[string]any {
	items := make([]any, 0, len(o.Items))
	for _, it := range o.Items {
		mods := make([]any, 0, len(it.Modifiers))
		for _, m := range it.Modifiers {
			mods = append(mods, map[string]any{
				"qty":   m.Quantity,
				"name":  m.Name,
				"price": o.Money(m.Price),
			})
		}
		items = append(items, map[string]any{
			"qty":        it.Quantity,
			"name":       it.Name,
			"local_name": it.LocalName,
			"unit_price": o.Money(it.UnitPrice),
			"total":      o.Money(it.Total()),
			"modifiers":  mods,
		})
	}
	return map[string]any{
		"order": map[string]any{
			"station": o.Station,
			"table":   o.Table,
			"number":  o.Number,
			"invoice": o.Invoice,
			"placed":  o.PlacedAt.Format(PlacedLayout),
			"printed": o.Printed().Format(PrintedLayout),
			"total":   o.Money(o.Total()),
			"items":   items,
		},
	}
}
