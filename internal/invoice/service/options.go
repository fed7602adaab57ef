package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
)

const (
	codeModeClient = "client"
	codeModeServer = "server"

	qrContentURL     = "url"
	qrContentInvoice = "invoice"

	defaultCurrency = "EGP"
)

// printOptions is the typed view of the print settings used for one render.
type printOptions struct {
	Title         string
	Language      string
	DateMode      render.DateMode
	Currency      string
	PublicBaseURL string

	Page     render.Page
	Company  render.Company
	Header   render.Header
	Sections render.Sections
	Columns  render.Columns
	Totals   TotalsOptions

	ShowSubtotal   bool
	ShowDiscount   bool
	ShowTotal      bool
	ShowAmountPaid bool
	ShowRemaining  bool

	QRMode         string
	QRContent      string
	BarcodeEnabled bool
	BarcodeMode    string

	Terms  string
	Footer string
}

// resolveOptions reads every key the document needs, each with its own default.
func resolveOptions(s printsettings.Settings, publicBaseURL string) printOptions {
	opts := printOptions{
		Title:         printsettings.String(s, "title", "Invoice"),
		Language:      render.NormalizeLanguage(printsettings.String(s, "language", "en")),
		DateMode:      render.ParseDateMode(printsettings.String(s, "dateDisplay", string(render.DateModeGregorian))),
		Currency:      strings.ToUpper(printsettings.String(s, "currency", defaultCurrency)),
		PublicBaseURL: strings.TrimRight(printsettings.String(s, "publicBaseUrl", publicBaseURL), "/"),

		Page: render.Page{
			PaperSize:    printsettings.String(s, "paperSize", "A4"),
			MarginTop:    printsettings.Float(s, "margins.top", 10),
			MarginRight:  printsettings.Float(s, "margins.right", 10),
			MarginBottom: printsettings.Float(s, "margins.bottom", 10),
			MarginLeft:   printsettings.Float(s, "margins.left", 10),
			FontFamily:   printsettings.String(s, "fontFamily", "Cairo"),
			FontSize:     printsettings.Float(s, "fontSize", 12),
			PrimaryColor: printsettings.String(s, "primaryColor", "#111827"),
		},
		Company: render.Company{
			Name:      printsettings.String(s, "company.name", "Repair Center"),
			Address:   printsettings.String(s, "company.address", ""),
			Phone:     printsettings.String(s, "company.phone", ""),
			Email:     printsettings.String(s, "company.email", ""),
			LogoURL:   printsettings.String(s, "company.logoUrl", ""),
			TaxNumber: printsettings.String(s, "company.taxNumber", ""),
		},
		Header: render.Header{
			ShowLogo:        printsettings.Bool(s, "header.showLogo", true),
			ShowCompanyName: printsettings.Bool(s, "header.showCompanyName", true),
			ShowQRCode:      printsettings.Bool(s, "header.showQrCode", true),
		},
		Sections: render.Sections{
			InvoiceDetails:  printsettings.Bool(s, "sections.showInvoiceDetails", true),
			CustomerDetails: printsettings.Bool(s, "sections.showCustomerDetails", true),
			DeviceInfo:      printsettings.Bool(s, "sections.showDeviceInfo", true),
			PaymentInfo:     printsettings.Bool(s, "sections.showPaymentInfo", true),
			Notes:           printsettings.Bool(s, "sections.showNotes", true),
			Terms:           printsettings.Bool(s, "sections.showTerms", false),
			Footer:          printsettings.Bool(s, "sections.showFooter", true),
		},
		Columns: render.Columns{
			Description: printsettings.Bool(s, "items.showDescription", true),
			Quantity:    printsettings.Bool(s, "items.showQuantity", true),
			UnitPrice:   printsettings.Bool(s, "items.showUnitPrice", true),
			Discount:    printsettings.Bool(s, "items.showDiscount", false),
			Tax:         printsettings.Bool(s, "items.showTax", false),
			Total:       printsettings.Bool(s, "items.showTotal", true),
		},
		Totals: TotalsOptions{
			ShowTax:      printsettings.Bool(s, "financial.showTax", true),
			TaxRate:      decimal.NewFromFloat(printsettings.Float(s, "financial.taxRate", 0)),
			ShowShipping: printsettings.Bool(s, "financial.showShipping", false),
		},

		ShowSubtotal:   printsettings.Bool(s, "financial.showSubtotal", true),
		ShowDiscount:   printsettings.Bool(s, "financial.showDiscount", true),
		ShowTotal:      printsettings.Bool(s, "financial.showTotal", true),
		ShowAmountPaid: printsettings.Bool(s, "financial.showAmountPaid", true),
		ShowRemaining:  printsettings.Bool(s, "financial.showRemaining", true),

		QRMode:         codeMode(printsettings.String(s, "qrCode.mode", codeModeClient)),
		QRContent:      strings.ToLower(printsettings.String(s, "qrCode.content", qrContentInvoice)),
		BarcodeEnabled: printsettings.Bool(s, "barcode.enabled", false),
		BarcodeMode:    codeMode(printsettings.String(s, "barcode.mode", codeModeClient)),

		Terms:  printsettings.String(s, "terms.text", ""),
		Footer: printsettings.String(s, "footer.text", ""),
	}
	return opts
}

func codeMode(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), codeModeServer) {
		return codeModeServer
	}
	return codeModeClient
}
