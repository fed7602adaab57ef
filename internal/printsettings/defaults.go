package printsettings

// DefaultDocument is the built-in settings document with its original key casing.
// Each call returns a fresh copy.
func DefaultDocument() map[string]any {
	return map[string]any{
		"title":      "Invoice",
		"paperSize":  "A4",
		"fontFamily": "Cairo",
		"margins": map[string]any{
			"top":    10,
			"right":  10,
			"bottom": 10,
			"left":   10,
		},
		"company": map[string]any{
			"name": "Repair Center",
		},
		InvoiceKey: map[string]any{},
	}
}

// Defaults is used whenever the settings file cannot be read.
func Defaults() Settings {
	return New(DefaultDocument())
}
