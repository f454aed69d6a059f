package order

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/slip/binding"
	"github.com/ByLCY/slip/layout"
)

func TestSample(t *testing.T) {
	o := Sample()
	assert.Equal(t, "Kitchen #1", o.Station)
	assert.Equal(t, "M1", o.Table)
	assert.Len(t, o.Items, 4)
	assert.Equal(t, "63.00", o.Total().StringFixed(2))
	assert.Equal(t, "14.00", o.Items[0].Total().StringFixed(2))
}

// localized 给示例订单补上韩文菜名，与出单口实际使用的数据一致。
func localized() *Order {
	o := Sample()
	o.Items[0].LocalName = "아보카도 에그롤"
	o.Items[2].LocalName = "감자 튀김"
	o.Items[3].LocalName = "뼈때 필레"
	return o
}

func TestSampleHasNoLocalNames(t *testing.T) {
	for _, it := range Sample().Items {
		assert.Empty(t, it.LocalName, it.Name)
	}
}

func TestLoadLocalizedExample(t *testing.T) {
	o, err := Load(filepath.Join("..", "examples", "order_ko.json"))
	require.NoError(t, err)
	want := localized()
	require.Len(t, o.Items, len(want.Items))
	for i, it := range o.Items {
		assert.Equal(t, want.Items[i].LocalName, it.LocalName)
	}
	assert.True(t, want.Total().Equal(o.Total()))
}

func TestKitchenTicketMatchesStationLayout(t *testing.T) {
	doc := KitchenTicket(localized(), DefaultStyle())
	var lines []string
	for _, el := range doc.Elements {
		if el.Kind == layout.KindText {
			lines = append(lines, el.Content)
		}
	}
	assert.Equal(t, []string{
		"Kitchen #1",
		"TABLE M1",
		"ORDER #1-1",
		"Invoice #1    Mon, 9/23/2024 6:37 PM",
		"1 Avocado Eggrolls",
		"아보카도 에그롤",
		"1 Make It Gluten Free",
		"1 Diet Coke",
		"1 Yes",
		"1 French Fries",
		"감자 튀김",
		"1 Petite Filet",
		"뼈때 필레",
		"1 Medium Rare",
		"1 Make It Gluten Free",
		"Printed 6:37 PM",
	}, lines)

	first := doc.Elements[0]
	assert.Equal(t, 16.0, first.PointSize)
	assert.Equal(t, layout.Bold, first.Weight)
	assert.True(t, first.SimulatedBold)
	assert.Equal(t, layout.Space(20), doc.Elements[1])
	for _, el := range doc.Elements[2:4] {
		assert.Equal(t, layout.Bold, el.Weight, el.Content)
		assert.True(t, el.SimulatedBold, el.Content)
	}
	assert.Equal(t, layout.Space(40), doc.Elements[len(doc.Elements)-2])
	require.NoError(t, layout.Validate(doc))
}

func TestKitchenTicketSingleStrike(t *testing.T) {
	style := DefaultStyle()
	style.SimulatedBold = false
	for _, el := range KitchenTicket(Sample(), style).Elements {
		assert.False(t, el.SimulatedBold, el.Content)
	}
}

func TestCustomerReceipt(t *testing.T) {
	o := Sample()
	o.Currency = "$"
	doc := CustomerReceipt(o, DefaultStyle())
	require.NoError(t, layout.Validate(doc))

	var rules int
	var totals []string
	for _, el := range doc.Elements {
		if el.Kind == layout.KindRule {
			rules++
		}
		if el.Kind == layout.KindText && el.Align == layout.AlignRight {
			totals = append(totals, el.Content)
		}
	}
	assert.Equal(t, 2, rules)
	assert.Equal(t, []string{"$ 14.00", "$ 3.00", "$ 6.00", "$ 40.00", "TOTAL $ 63.00"}, totals)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"unknown field":  `{"station":"K","table":"1","number":"1","invoice":"1","placed_at":"2024-09-23T18:37:00Z","items":[{"qty":1,"name":"x"}],"tip":1}`,
		"no items":       `{"station":"K","table":"1","number":"1","invoice":"1","placed_at":"2024-09-23T18:37:00Z","items":[]}`,
		"zero qty":       `{"station":"K","table":"1","number":"1","invoice":"1","placed_at":"2024-09-23T18:37:00Z","items":[{"qty":0,"name":"x"}]}`,
		"negative price": `{"station":"K","table":"1","number":"1","invoice":"1","placed_at":"2024-09-23T18:37:00Z","items":[{"qty":1,"name":"x","unit_price":"-1"}]}`,
		"missing table":  `{"station":"K","number":"1","invoice":"1","placed_at":"2024-09-23T18:37:00Z","items":[{"qty":1,"name":"x"}]}`,
	}
	for name, data := range cases {
		_, err := Parse([]byte(data))
		assert.ErrorIs(t, err, ErrInvalidOrder, name)
	}

	_, err := Parse([]byte(`{"station":"K","number":"1","invoice":"1","placed_at":"2024-09-23T18:37:00Z","items":[{"qty":0,"name":"x"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table")
	assert.Contains(t, err.Error(), "items[0].qty")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(path, sampleJSON, 0o644))
	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Sample().Invoice, o.Invoice)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDataFeedsTemplates(t *testing.T) {
	o := Sample()
	data := o.Data()
	assert.Equal(t, "TABLE M1", binding.Interpolate("TABLE ${order.table}", data))
	assert.Equal(t, "Printed 6:37 PM", binding.Interpolate("Printed ${order.printed}", data))
	assert.Equal(t, "1 Diet Coke", binding.Interpolate("${order.items[1].qty} ${order.items[1].name}", data))

	items, err := binding.Items(data, "order.items")
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestPrintedFallsBackToNow(t *testing.T) {
	o := &Order{}
	assert.False(t, o.Printed().IsZero())
}

func TestMoney(t *testing.T) {
	o := &Order{}
	assert.Equal(t, "1.50", o.Money(decimal.RequireFromString("1.5")))
	o.Currency = "KRW"
	assert.Equal(t, "KRW 1200.00", o.Money(decimal.NewFromInt(1200)))
}
