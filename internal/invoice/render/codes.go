package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrSize        = 128
	barcodeWidth  = 280
	barcodeHeight = 60
)

// QRCodeDataURI encodes payload as a PNG QR code data URI.
func QRCodeDataURI(payload string) (template.URL, error) {
	if payload == "" {
		return "", fmt.Errorf("qr payload is empty")
	}
	img, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return pngDataURI(img), nil
}

// BarcodeDataURI encodes payload as a Code 128 PNG data URI.
func BarcodeDataURI(payload string) (template.URL, error) {
	if payload == "" {
		return "", fmt.Errorf("barcode payload is empty")
	}
	code, err := code128.Encode(payload)
	if err != nil {
		return "", fmt.Errorf("encode barcode: %w", err)
	}
	scaled, err := barcode.Scale(code, barcodeWidth, barcodeHeight)
	if err != nil {
		return "", fmt.Errorf("scale barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("encode barcode png: %w", err)
	}
	return pngDataURI(buf.Bytes()), nil
}

func pngDataURI(data []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
}
