package render

import "strings"

// Labels holds the translated strings used by the document and error pages.
type Labels map[string]string

var catalog = map[string]Labels{
	"en": {
		"invoice":               "Invoice",
		"invoiceNumber":         "Invoice number",
		"repairReference":       "Repair reference",
		"invoiceDetails":        "Invoice details",
		"customerDetails":       "Customer details",
		"date":                  "Date",
		"status":                "Status",
		"technician":            "Technician",
		"name":                  "Name",
		"phone":                 "Phone",
		"email":                 "Email",
		"address":               "Address",
		"device":                "Device",
		"serialNumber":          "Serial number",
		"description":           "Description",
		"quantity":              "Qty",
		"unitPrice":             "Unit price",
		"discount":              "Discount",
		"tax":                   "Tax",
		"total":                 "Total",
		"subtotal":              "Subtotal",
		"shipping":              "Shipping",
		"amountPaid":            "Amount paid",
		"remaining":             "Remaining",
		"paymentInfo":           "Payment",
		"paymentMethod":         "Payment method",
		"notes":                 "Notes",
		"terms":                 "Terms and conditions",
		"noItems":               "No items",
		"thankYou":              "Thank you for your business",
		"taxNumber":             "Tax number",
		"notFoundTitle":         "Invoice not found",
		"notFoundMessage":       "The requested invoice does not exist or has been removed.",
		"forbiddenTitle":        "Not authorized",
		"forbiddenMessage":      "The phone number does not match this repair request.",
		"badRequestTitle":       "Missing information",
		"badRequestMsg":         "Both the phone number and the repair id are required.",
		"rateLimitTitle":        "Too many requests",
		"rateLimitMessage":      "Please wait a moment and try again.",
		"serverErrorTitle":      "Server error",
		"unauthorized":          "Authentication required",
		"status.draft":          "Draft",
		"status.sent":           "Sent",
		"status.paid":           "Paid",
		"status.partially_paid": "Partially paid",
		"status.overdue":        "Overdue",
		"status.cancelled":      "Cancelled",
	},
	"ar": {
		"invoice":               "فاتورة",
		"invoiceNumber":         "رقم الفاتورة",
		"repairReference":       "رقم طلب الصيانة",
		"invoiceDetails":        "بيانات الفاتورة",
		"customerDetails":       "بيانات العميل",
		"date":                  "التاريخ",
		"status":                "الحالة",
		"technician":            "الفني",
		"name":                  "الاسم",
		"phone":                 "الهاتف",
		"email":                 "البريد الإلكتروني",
		"address":               "العنوان",
		"device":                "الجهاز",
		"serialNumber":          "الرقم التسلسلي",
		"description":           "الوصف",
		"quantity":              "الكمية",
		"unitPrice":             "سعر الوحدة",
		"discount":              "الخصم",
		"tax":                   "الضريبة",
		"total":                 "الإجمالي",
		"subtotal":              "المجموع الفرعي",
		"shipping":              "الشحن",
		"amountPaid":            "المدفوع",
		"remaining":             "المتبقي",
		"paymentInfo":           "الدفع",
		"paymentMethod":         "طريقة الدفع",
		"notes":                 "ملاحظات",
		"terms":                 "الشروط والأحكام",
		"noItems":               "لا توجد عناصر",
		"thankYou":              "شكراً لتعاملكم معنا",
		"taxNumber":             "الرقم الضريبي",
		"notFoundTitle":         "الفاتورة غير موجودة",
		"notFoundMessage":       "الفاتورة المطلوبة غير موجودة أو تم حذفها.",
		"forbiddenTitle":        "غير مصرح",
		"forbiddenMessage":      "رقم الهاتف غير مطابق لطلب الصيانة.",
		"badRequestTitle":       "بيانات ناقصة",
		"badRequestMsg":         "رقم الهاتف ورقم طلب الصيانة مطلوبان.",
		"rateLimitTitle":        "طلبات كثيرة",
		"rateLimitMessage":      "يرجى الانتظار قليلاً ثم المحاولة مرة أخرى.",
		"serverErrorTitle":      "خطأ في الخادم",
		"unauthorized":          "يلزم تسجيل الدخول",
		"status.draft":          "مسودة",
		"status.sent":           "مرسلة",
		"status.paid":           "مدفوعة",
		"status.partially_paid": "مدفوعة جزئياً",
		"status.overdue":        "متأخرة",
		"status.cancelled":      "ملغاة",
	},
}

// NormalizeLanguage returns a supported language code, defaulting to English.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := catalog[lang]; ok {
		return lang
	}
	return "en"
}

// LabelsFor returns the catalog for lang. Missing keys fall back to English.
func LabelsFor(lang string) Labels {
	lang = NormalizeLanguage(lang)
	if lang == "en" {
		return catalog["en"]
	}
	merged := make(Labels, len(catalog["en"]))
	for k, v := range catalog["en"] {
		merged[k] = v
	}
	for k, v := range catalog[lang] {
		merged[k] = v
	}
	return merged
}

// Direction returns the text direction for lang.
func Direction(lang string) string {
	if NormalizeLanguage(lang) == "ar" {
		return "rtl"
	}
	return "ltr"
}

// Get returns the label for key, or key itself when unknown.
func (l Labels) Get(key string) string {
	if v, ok := l[key]; ok {
		return v
	}
	return key
}
