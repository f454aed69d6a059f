package order

import (
	"fmt"

	"github.com/ByLCY/slip/layout"
)

// Time layouts printed on tickets.
const (
	PlacedLayout  = "Mon, 1/2/2006 3:04 PM"
	PrintedLayout = "3:04 PM"
)

// Style 控制小票的字号与粗体模拟。
type Style struct {
	HeaderSize     float64 // 出单口标题
	TitleSize      float64 // 桌号、单号
	BodySize       float64
	SimulatedBold  bool // 标题额外加粗一遍
	ModifierIndent int
}

// DefaultStyle matches the kitchen printers' usual ticket.
func DefaultStyle() Style {
	return Style{
		HeaderSize:    16,
		TitleSize:     14,
		BodySize:      12,
		SimulatedBold: true,
	}
}

// KitchenTicket lays out the ticket sent to a preparation station.
func KitchenTicket(o *Order, s Style) layout.Document {
	els := []layout.Element{
		layout.Text(o.Station, s.HeaderSize, layout.Bold, layout.AlignLeft, 0).WithSimulatedBold(s.SimulatedBold),
		layout.Space(20),
		layout.Text("TABLE "+o.Table, s.TitleSize, layout.Bold, layout.AlignLeft, 0).WithSimulatedBold(s.SimulatedBold),
		layout.Text("ORDER #"+o.Number, s.TitleSize, layout.Bold, layout.AlignLeft, 0).WithSimulatedBold(s.SimulatedBold),
		layout.Space(20),
		layout.Text(fmt.Sprintf("Invoice #%s    %s", o.Invoice, o.PlacedAt.Format(PlacedLayout)), s.BodySize, layout.Regular, layout.AlignLeft, 0),
		layout.Space(20),
	}
	for _, it := range o.Items {
		els = append(els, layout.Text(fmt.Sprintf("%d %s", it.Quantity, it.Name), s.BodySize, layout.Regular, layout.AlignLeft, 0))
		if it.LocalName != "" {
			els = append(els, layout.Text(it.LocalName, s.BodySize, layout.Regular, layout.AlignLeft, 0))
		}
		for _, m := range it.Modifiers {
			els = append(els, layout.Text(fmt.Sprintf("%d %s", m.Quantity, m.Name), s.BodySize, layout.Regular, layout.AlignLeft, s.ModifierIndent))
		}
	}
	els = append(els,
		layout.Space(40),
		layout.Text("Printed "+o.Printed().Format(PrintedLayout), s.BodySize, layout.Regular, layout.AlignLeft, 0),
	)
	return layout.NewDocument(els...)
}

// CustomerReceipt lays out the guest copy: items with right-aligned line
// totals, a rule and the grand total.
func CustomerReceipt(o *Order, s Style) layout.Document {
	els := []layout.Element{
		layout.Text("Invoice #"+o.Invoice, s.HeaderSize, layout.Bold, layout.AlignCenter, 0).WithSimulatedBold(s.SimulatedBold),
		layout.Text(o.PlacedAt.Format(PlacedLayout), s.BodySize, layout.Regular, layout.AlignCenter, 0),
		layout.Text(fmt.Sprintf("TABLE %s  ORDER #%s", o.Table, o.Number), s.BodySize, layout.Regular, layout.AlignCenter, 0),
		layout.Space(20),
		layout.Rule(),
		layout.Space(10),
	}
	for _, it := range o.Items {
		els = append(els, layout.Text(fmt.Sprintf("%d %s", it.Quantity, it.Name), s.BodySize, layout.Regular, layout.AlignLeft, 0))
		for _, m := range it.Modifiers {
			if m.Price.IsPositive() {
				els = append(els, layout.Text(fmt.Sprintf("%d %s", m.Quantity, m.Name), s.BodySize, layout.Regular, layout.AlignLeft, s.ModifierIndent))
			}
		}
		els = append(els, layout.Text(o.Money(it.Total()), s.BodySize, layout.Regular, layout.AlignRight, 0))
	}
	els = append(els,
		layout.Space(10),
		layout.Rule(),
		layout.Space(10),
		layout.Text("TOTAL "+o.Money(o.Total()), s.TitleSize, layout.Bold, layout.AlignRight, 0).WithSimulatedBold(s.SimulatedBold),
		layout.Space(40),
		layout.Text("Printed "+o.Printed().Format(PrintedLayout), s.BodySize, layout.Regular, layout.AlignCenter, 0),
	)
	return layout.NewDocument(els...)
}
