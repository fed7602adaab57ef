package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
)

var mutedColor = &props.Color{Red: 128, Green: 128, Blue: 128}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

// GenerateInvoice lays out the same sections as the HTML view. The built-in
// PDF fonts only cover Latin text, so labels are always printed in English.
func (p *PDFProvider) GenerateInvoice(ctx context.Context, doc render.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labels := render.LabelsFor("en")
	cfg := config.NewBuilder().
		WithPageSize(pageSize(doc.Page.PaperSize)).
		WithTopMargin(margin(doc.Page.MarginTop)).
		WithLeftMargin(margin(doc.Page.MarginLeft)).
		WithRightMargin(margin(doc.Page.MarginRight)).
		Build()

	m := maroto.New(cfg)

	addHeader(m, doc, labels)
	if doc.Sections.InvoiceDetails || doc.Sections.CustomerDetails {
		addInfo(m, doc, labels)
	}
	if doc.Sections.DeviceInfo {
		device := strings.TrimSpace(doc.Device.Type + " " + doc.Device.Model)
		if doc.Device.SerialNumber != "" {
			device += " - " + labels.Get("serialNumber") + ": " + doc.Device.SerialNumber
		}
		m.AddRow(8, text.NewCol(12, labels.Get("device")+": "+device, props.Text{Size: 9}))
	}
	addItems(m, doc, labels)
	addTotals(m, doc, labels)

	if doc.Sections.PaymentInfo && doc.Invoice.PaymentMethod != "" {
		m.AddRow(8, text.NewCol(12, labels.Get("paymentMethod")+": "+doc.Invoice.PaymentMethod, props.Text{Size: 9}))
	}
	if doc.Sections.Notes && doc.Notes != "" {
		addParagraph(m, labels.Get("notes"), doc.Notes)
	}
	if doc.Sections.Terms && doc.Terms != "" {
		addParagraph(m, labels.Get("terms"), doc.Terms)
	}
	if doc.Barcode.Enabled && doc.Barcode.Payload != "" {
		m.AddRow(20, col.New(3), code.NewBarCol(6, doc.Barcode.Payload, props.Barcode{Percent: 100, Center: true}), col.New(3))
	}
	if doc.Sections.Footer {
		m.AddRow(10, text.NewCol(12, footerText(doc, labels), props.Text{Size: 8, Align: align.Center, Color: mutedColor}))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return out.GetBytes(), nil
}

// footerText matches the HTML template, which thanks the customer when no footer is configured.
func footerText(doc render.Document, labels render.Labels) string {
	if doc.Footer != "" {
		return doc.Footer
	}
	return labels.Get("thankYou")
}

func addHeader(m core.Maroto, doc render.Document, labels render.Labels) {
	left := col.New(6)
	if doc.Header.ShowCompanyName {
		left.Add(text.New(doc.Company.Name, props.Text{Size: 14, Style: fontstyle.Bold}))
	}
	top := 7.0
	for _, entry := range []string{doc.Company.Address, doc.Company.Phone, doc.Company.Email} {
		if entry == "" {
			continue
		}
		left.Add(text.New(entry, props.Text{Size: 8, Top: top, Color: mutedColor}))
		top += 4
	}

	right := col.New(4).Add(
		text.New(labels.Get("invoice"), props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Right}),
		text.New(doc.Invoice.Number, props.Text{Size: 10, Top: 9, Align: align.Right}),
	)

	if doc.Header.ShowQRCode && doc.QRCode.Enabled && doc.QRCode.Payload != "" {
		m.AddRow(30, left, right, code.NewQrCol(2, doc.QRCode.Payload, props.Rect{Percent: 90, Center: true}))
	} else {
		m.AddRow(30, left, right, col.New(2))
	}
	m.AddRow(4, line.NewCol(12))
}

func addInfo(m core.Maroto, doc render.Document, labels render.Labels) {
	invoiceCol := col.New(6)
	if doc.Sections.InvoiceDetails {
		rows := [][2]string{
			{labels.Get("invoiceNumber"), doc.Invoice.Number},
			{labels.Get("repairReference"), doc.Invoice.RepairReference},
			{labels.Get("date"), doc.Invoice.Date},
			{labels.Get("status"), doc.Invoice.StatusLabel},
			{labels.Get("technician"), doc.Invoice.Technician},
		}
		fillPairs(invoiceCol, labels.Get("invoiceDetails"), rows)
	}

	customerCol := col.New(6)
	if doc.Sections.CustomerDetails {
		rows := [][2]string{
			{labels.Get("name"), doc.Customer.Name},
			{labels.Get("phone"), doc.Customer.Phone},
			{labels.Get("email"), doc.Customer.Email},
			{labels.Get("address"), doc.Customer.Address},
		}
		fillPairs(customerCol, labels.Get("customerDetails"), rows)
	}

	m.AddRow(30, invoiceCol, customerCol)
}

func fillPairs(c core.Col, title string, rows [][2]string) {
	c.Add(text.New(title, props.Text{Size: 10, Style: fontstyle.Bold}))
	top := 6.0
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		c.Add(text.New(row[0]+": "+row[1], props.Text{Size: 9, Top: top}))
		top += 4.5
	}
}

type column struct {
	label string
	size  int
	right bool
	value func(render.ItemView) string
}

func itemColumns(doc render.Document, labels render.Labels) []column {
	var cols []column
	if doc.Columns.Description {
		cols = append(cols, column{label: labels.Get("description"), value: func(i render.ItemView) string { return i.Description }})
	}
	numeric := []struct {
		on    bool
		key   string
		value func(render.ItemView) string
	}{
		{doc.Columns.Quantity, "quantity", func(i render.ItemView) string { return i.Quantity }},
		{doc.Columns.UnitPrice, "unitPrice", func(i render.ItemView) string { return i.UnitPrice }},
		{doc.Columns.Discount, "discount", func(i render.ItemView) string { return i.Discount }},
		{doc.Columns.Tax, "tax", func(i render.ItemView) string { return i.Tax }},
		{doc.Columns.Total, "total", func(i render.ItemView) string { return i.Total }},
	}
	for _, n := range numeric {
		if n.on {
			cols = append(cols, column{label: labels.Get(n.key), size: 2, right: true, value: n.value})
		}
	}

	// The description takes whatever width the numeric columns leave.
	used := 1
	for _, c := range cols {
		used += c.size
	}
	for i := range cols {
		if cols[i].size == 0 {
			cols[i].size = max(12-used, 1)
		}
	}
	return cols
}

func addItems(m core.Maroto, doc render.Document, labels render.Labels) {
	cols := itemColumns(doc, labels)

	header := []core.Col{text.NewCol(1, "#", props.Text{Size: 9, Style: fontstyle.Bold})}
	for _, c := range cols {
		header = append(header, text.NewCol(c.size, c.label, props.Text{Size: 9, Style: fontstyle.Bold, Align: alignFor(c.right)}))
	}
	m.AddRow(8, header...)
	m.AddRow(2, line.NewCol(12))

	if len(doc.Items) == 0 {
		m.AddRow(8, text.NewCol(12, labels.Get("noItems"), props.Text{Size: 9, Color: mutedColor}))
		return
	}
	for _, item := range doc.Items {
		row := []core.Col{text.NewCol(1, fmt.Sprintf("%d", item.Index), props.Text{Size: 9})}
		for _, c := range cols {
			row = append(row, text.NewCol(c.size, c.value(item), props.Text{Size: 9, Align: alignFor(c.right)}))
		}
		m.AddRow(8, row...)
	}
	m.AddRow(2, line.NewCol(12))
}

func addTotals(m core.Maroto, doc render.Document, labels render.Labels) {
	t := doc.Totals
	rows := []struct {
		show  bool
		key   string
		value string
		bold  bool
	}{
		{t.ShowSubtotal, "subtotal", t.Subtotal, false},
		{t.ShowDiscount, "discount", "- " + t.Discount, false},
		{t.ShowTax, "tax", t.Tax, false},
		{t.ShowShipping, "shipping", t.Shipping, false},
		{t.ShowTotal, "total", t.Total, true},
		{t.ShowPaid, "amountPaid", t.AmountPaid, false},
		{t.ShowRemain, "remaining", t.Remaining, true},
	}
	for _, r := range rows {
		if !r.show {
			continue
		}
		style := fontstyle.Normal
		if r.bold {
			style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(7),
			text.NewCol(2, labels.Get(r.key), props.Text{Size: 9, Style: style}),
			text.NewCol(3, r.value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}
}

func addParagraph(m core.Maroto, title, body string) {
	m.AddRow(18, col.New(12).Add(
		text.New(title, props.Text{Size: 9, Style: fontstyle.Bold}),
		text.New(body, props.Text{Size: 8, Top: 5}),
	))
}

func alignFor(right bool) align.Type {
	if right {
		return align.Right
	}
	return align.Left
}

func pageSize(value string) pagesize.Type {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "A3":
		return pagesize.A3
	case "A5":
		return pagesize.A5
	case "LETTER":
		return pagesize.Letter
	case "LEGAL":
		return pagesize.Legal
	default:
		return pagesize.A4
	}
}

func margin(mm float64) float64 {
	if mm <= 0 {
		return 10
	}
	return mm
}
