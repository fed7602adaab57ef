package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}} {{.Invoice.Number}}</title>
  <style>
    @page { size: {{.Page.PaperSize}}; margin: {{mm .Page.MarginTop}} {{mm .Page.MarginRight}} {{mm .Page.MarginBottom}} {{mm .Page.MarginLeft}}; }
    :root { --primary: {{.Page.PrimaryColor}}; }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: {{.Page.FontFamily}}, "Segoe UI", Tahoma, Arial, sans-serif;
      font-size: {{px .Page.FontSize}};
      color: #1a1f36;
      background: #ffffff;
    }
    .sheet { padding-bottom: 48px; }
    .header { display: flex; justify-content: space-between; align-items: flex-start; border-bottom: 2px solid var(--primary); padding-bottom: 12px; margin-bottom: 16px; }
    .header h1 { margin: 0; font-size: 22px; color: var(--primary); }
    .company-name { font-size: 18px; font-weight: 700; }
    .company-meta { color: #697386; font-size: 11px; line-height: 1.5; }
    .logo { max-height: 64px; max-width: 180px; }
    .qr img, .qr div { width: 96px; height: 96px; }
    .info { display: flex; gap: 24px; margin-bottom: 16px; }
    .info .col { flex: 1; border: 1px solid #e3e8ee; border-radius: 4px; padding: 10px; }
    .label { font-size: 10px; text-transform: uppercase; color: #8792a2; font-weight: 600; }
    .section-title { font-weight: 700; margin-bottom: 6px; color: var(--primary); }
    .row { display: flex; justify-content: space-between; padding: 2px 0; }
    .device { background: #f7f9fc; border-radius: 4px; padding: 8px 10px; margin-bottom: 16px; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
    th { background: var(--primary); color: #ffffff; font-size: 11px; padding: 6px; text-align: start; }
    td { border-bottom: 1px solid #e3e8ee; padding: 6px; vertical-align: top; }
    .num { text-align: end; white-space: nowrap; }
    .totals { margin-inline-start: auto; width: 280px; }
    .totals .row { border-bottom: 1px dashed #e3e8ee; }
    .totals .grand { font-weight: 700; font-size: 14px; border-bottom: 2px solid var(--primary); }
    .payment, .notes, .terms { border: 1px solid #e3e8ee; border-radius: 4px; padding: 10px; margin-bottom: 12px; }
    .barcode { text-align: center; margin: 12px 0; }
    .footer { position: fixed; bottom: 0; left: 0; right: 0; text-align: center; font-size: 11px; color: #8792a2; border-top: 1px solid #e3e8ee; padding: 6px 0; background: #ffffff; }
    @media print { .no-print { display: none; } }
  </style>
</head>
<body>
  <div class="sheet">
    <div class="header">
      <div>
        {{if and .Header.ShowLogo .Company.LogoURL}}<img class="logo" src="{{.Company.LogoURL}}" alt="{{.Company.Name}}">{{end}}
        {{if .Header.ShowCompanyName}}<div class="company-name">{{.Company.Name}}</div>{{end}}
        <div class="company-meta">
          {{with .Company.Address}}<div>{{.}}</div>{{end}}
          {{with .Company.Phone}}<div>{{.}}</div>{{end}}
          {{with .Company.Email}}<div>{{.}}</div>{{end}}
          {{with .Company.TaxNumber}}<div>{{$.L.taxNumber}}: {{.}}</div>{{end}}
        </div>
      </div>
      <div>
        <h1>{{.Title}}</h1>
        <div class="label">{{.L.invoiceNumber}}</div>
        <div><strong>{{.Invoice.Number}}</strong></div>
      </div>
      {{if and .Header.ShowQRCode .QRCode.Enabled}}
      <div class="qr">
        {{if .QRCode.Server}}<img src="{{.QRCode.Image}}" alt="QR">{{else}}<div id="qrcode"></div>{{end}}
      </div>
      {{end}}
    </div>

    {{if or .Sections.InvoiceDetails .Sections.CustomerDetails}}
    <div class="info">
      {{if .Sections.InvoiceDetails}}
      <div class="col">
        <div class="section-title">{{.L.invoiceDetails}}</div>
        <div class="row"><span>{{.L.invoiceNumber}}</span><span>{{.Invoice.Number}}</span></div>
        {{with .Invoice.RepairReference}}<div class="row"><span>{{$.L.repairReference}}</span><span>{{.}}</span></div>{{end}}
        <div class="row"><span>{{.L.date}}</span><span>{{.Invoice.Date}}</span></div>
        <div class="row"><span>{{.L.status}}</span><span>{{.Invoice.StatusLabel}}</span></div>
        {{with .Invoice.Technician}}<div class="row"><span>{{$.L.technician}}</span><span>{{.}}</span></div>{{end}}
      </div>
      {{end}}
      {{if .Sections.CustomerDetails}}
      <div class="col">
        <div class="section-title">{{.L.customerDetails}}</div>
        <div class="row"><span>{{.L.name}}</span><span>{{or .Customer.Name "-"}}</span></div>
        {{with .Customer.Phone}}<div class="row"><span>{{$.L.phone}}</span><span dir="ltr">{{.}}</span></div>{{end}}
        {{with .Customer.Email}}<div class="row"><span>{{$.L.email}}</span><span>{{.}}</span></div>{{end}}
        {{with .Customer.Address}}<div class="row"><span>{{$.L.address}}</span><span>{{.}}</span></div>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    {{if .Sections.DeviceInfo}}
    <div class="device">
      <strong>{{.L.device}}:</strong> {{.Device.Type}} {{.Device.Model}}{{with .Device.SerialNumber}} &middot; {{$.L.serialNumber}}: {{.}}{{end}}
    </div>
    {{end}}

    <table>
      <thead>
        <tr>
          <th>#</th>
          {{if .Columns.Description}}<th>{{.L.description}}</th>{{end}}
          {{if .Columns.Quantity}}<th class="num">{{.L.quantity}}</th>{{end}}
          {{if .Columns.UnitPrice}}<th class="num">{{.L.unitPrice}}</th>{{end}}
          {{if .Columns.Discount}}<th class="num">{{.L.discount}}</th>{{end}}
          {{if .Columns.Tax}}<th class="num">{{.L.tax}}</th>{{end}}
          {{if .Columns.Total}}<th class="num">{{.L.total}}</th>{{end}}
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{.Index}}</td>
          {{if $.Columns.Description}}<td>{{.Description}}</td>{{end}}
          {{if $.Columns.Quantity}}<td class="num">{{.Quantity}}</td>{{end}}
          {{if $.Columns.UnitPrice}}<td class="num">{{.UnitPrice}}</td>{{end}}
          {{if $.Columns.Discount}}<td class="num">{{.Discount}}</td>{{end}}
          {{if $.Columns.Tax}}<td class="num">{{.Tax}}</td>{{end}}
          {{if $.Columns.Total}}<td class="num">{{.Total}}</td>{{end}}
        </tr>
        {{else}}
        <tr><td colspan="{{.Columns.Span}}">{{.L.noItems}}</td></tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      {{if .Totals.ShowSubtotal}}<div class="row"><span>{{.L.subtotal}}</span><span class="num">{{.Totals.Subtotal}}</span></div>{{end}}
      {{if .Totals.ShowDiscount}}<div class="row"><span>{{.L.discount}}</span><span class="num">- {{.Totals.Discount}}</span></div>{{end}}
      {{if .Totals.ShowTax}}<div class="row"><span>{{.L.tax}}</span><span class="num">{{.Totals.Tax}}</span></div>{{end}}
      {{if .Totals.ShowShipping}}<div class="row"><span>{{.L.shipping}}</span><span class="num">{{.Totals.Shipping}}</span></div>{{end}}
      {{if .Totals.ShowTotal}}<div class="row grand"><span>{{.L.total}}</span><span class="num">{{.Totals.Total}}</span></div>{{end}}
      {{if .Totals.ShowPaid}}<div class="row"><span>{{.L.amountPaid}}</span><span class="num">{{.Totals.AmountPaid}}</span></div>{{end}}
      {{if .Totals.ShowRemain}}<div class="row"><span>{{.L.remaining}}</span><span class="num">{{.Totals.Remaining}}</span></div>{{end}}
    </div>

    {{if .Sections.PaymentInfo}}
    <div class="payment">
      <div class="section-title">{{.L.paymentInfo}}</div>
      {{with .Invoice.PaymentMethod}}<div class="row"><span>{{$.L.paymentMethod}}</span><span>{{.}}</span></div>{{end}}
      <div class="row"><span>{{.L.status}}</span><span>{{.Invoice.StatusLabel}}</span></div>
    </div>
    {{end}}

    {{if and .Sections.Notes .Notes}}
    <div class="notes"><div class="section-title">{{.L.notes}}</div>{{.Notes}}</div>
    {{end}}
    {{if and .Sections.Terms .Terms}}
    <div class="terms"><div class="section-title">{{.L.terms}}</div>{{.Terms}}</div>
    {{end}}

    {{if .Barcode.Enabled}}
    <div class="barcode">
      {{if .Barcode.Server}}<img src="{{.Barcode.Image}}" alt="{{.Barcode.Payload}}">{{else}}<svg id="barcode"></svg>{{end}}
    </div>
    {{end}}
  </div>

  {{if .Sections.Footer}}<div class="footer">{{or .Footer .L.thankYou}}</div>{{end}}

  {{if and .Header.ShowQRCode .QRCode.Enabled (not .QRCode.Server)}}
  <script src="https://cdnjs.cloudflare.com/ajax/libs/qrcodejs/1.0.0/qrcode.min.js"></script>
  <script>
    new QRCode(document.getElementById("qrcode"), { text: {{.QRCode.Payload}}, width: 96, height: 96 });
  </script>
  {{end}}
  {{if and .Barcode.Enabled (not .Barcode.Server)}}
  <script src="https://cdn.jsdelivr.net/npm/jsbarcode@3.11.6/dist/JsBarcode.all.min.js"></script>
  <script>
    JsBarcode("#barcode", {{.Barcode.Payload}}, { format: "CODE128", height: 40, displayValue: true });
  </script>
  {{end}}
</body>
</html>
`

var (
	hexColorPattern  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	fontFamilyFilter = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)
	paperSizeFilter  = regexp.MustCompile(`^(A3|A4|A5|B5|Letter|Legal|[0-9]{2,3}mm [0-9]{2,3}mm)$`)
)

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"mm": func(v float64) string { return trimNumber(v) + "mm" },
		"px": func(v float64) string { return trimNumber(v) + "px" },
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(doc Document) (string, error) {
	doc.Page.PrimaryColor = sanitizeColor(doc.Page.PrimaryColor)
	doc.Page.FontFamily = sanitizeFont(doc.Page.FontFamily)
	doc.Page.PaperSize = sanitizePaper(doc.Page.PaperSize)
	if doc.Page.FontSize <= 0 {
		doc.Page.FontSize = 12
	}
	if doc.L == nil {
		doc.L = LabelsFor(doc.Lang)
	}
	if doc.Title == "" {
		doc.Title = doc.L.Get("invoice")
	}
	if doc.Company.Name == "" {
		doc.Company.Name = doc.Title
	}

	if err := inlineCodes(&doc); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}

// inlineCodes generates PNG data for codes rendered on the server side.
func inlineCodes(doc *Document) error {
	if doc.QRCode.Enabled && doc.QRCode.Server && doc.QRCode.Image == "" && doc.Header.ShowQRCode {
		img, err := QRCodeDataURI(doc.QRCode.Payload)
		if err != nil {
			return err
		}
		doc.QRCode.Image = img
	}
	if doc.Barcode.Enabled && doc.Barcode.Server && doc.Barcode.Image == "" {
		img, err := BarcodeDataURI(doc.Barcode.Payload)
		if err != nil {
			return err
		}
		doc.Barcode.Image = img
	}
	return nil
}

func trimNumber(v float64) string {
	if v < 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sanitizeColor(value string) string {
	trimmed := strings.TrimSpace(value)
	if hexColorPattern.MatchString(trimmed) {
		return trimmed
	}
	return "#111827"
}

func sanitizeFont(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && fontFamilyFilter.MatchString(trimmed) {
		return trimmed
	}
	return "Cairo"
}

func sanitizePaper(value string) string {
	trimmed := strings.TrimSpace(value)
	if paperSizeFilter.MatchString(trimmed) {
		return trimmed
	}
	return "A4"
}
