package render

import "html/template"

// Renderer turns a resolved Document into a printable HTML page.
type Renderer interface {
	RenderHTML(doc Document) (string, error)
}

// Document is the fully resolved view of one invoice. Every visibility
// decision has already been taken from the print settings.
type Document struct {
	Lang      string
	Dir       string
	Title     string
	L         Labels
	Page      Page
	Company   Company
	Header    Header
	Sections  Sections
	Columns   Columns
	Totals    TotalsView
	QRCode    Code
	Barcode   Code
	Footer    string
	Notes     string
	Terms     string
	Invoice   InvoiceView
	Customer  PartyView
	Device    DeviceView
	Items     []ItemView
	ItemCount int
}

type Page struct {
	PaperSize    string
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
	FontFamily   string
	FontSize     float64
	PrimaryColor string
}

type Company struct {
	Name      string
	Address   string
	Phone     string
	Email     string
	LogoURL   string
	TaxNumber string
}

type Header struct {
	ShowLogo        bool
	ShowCompanyName bool
	ShowQRCode      bool
}

type Sections struct {
	InvoiceDetails  bool
	CustomerDetails bool
	DeviceInfo      bool
	PaymentInfo     bool
	Notes           bool
	Terms           bool
	Footer          bool
}

type Columns struct {
	Description bool
	Quantity    bool
	UnitPrice   bool
	Discount    bool
	Tax         bool
	Total       bool
}

// Span is the number of visible item columns, including the row counter.
func (c Columns) Span() int {
	n := 1
	for _, on := range []bool{c.Description, c.Quantity, c.UnitPrice, c.Discount, c.Tax, c.Total} {
		if on {
			n++
		}
	}
	return n
}

type InvoiceView struct {
	Number          string
	RepairReference string
	Date            string
	Status          string
	StatusLabel     string
	PaymentMethod   string
	Technician      string
	Currency        string
}

type PartyView struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type DeviceView struct {
	Type         string
	Model        string
	SerialNumber string
}

type ItemView struct {
	Index       int
	Description string
	Quantity    string
	UnitPrice   string
	Discount    string
	Tax         string
	Total       string
}

// TotalsView holds formatted amounts and the flag deciding each row.
type TotalsView struct {
	Subtotal     string
	Discount     string
	Tax          string
	Shipping     string
	Total        string
	AmountPaid   string
	Remaining    string
	ShowSubtotal bool
	ShowDiscount bool
	ShowTax      bool
	ShowShipping bool
	ShowTotal    bool
	ShowPaid     bool
	ShowRemain   bool
}

// Code describes an optional QR code or barcode.
type Code struct {
	Enabled bool
	// Server renders the image inline instead of loading a browser script.
	Server  bool
	Payload string
	Image   template.URL
}
