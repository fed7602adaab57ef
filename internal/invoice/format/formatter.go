package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const (
	DefaultInvoiceNumberTemplate   = "INV-{YYYY}{MM}{DD}-{SEQ3}"
	DefaultRepairReferenceTemplate = "REQ-{YYYY}{MM}{DD}-{SEQ3}"
)

// FormatInvoiceNumber renders the display number of an invoice from its own
// creation date and id. It never looks at the linked repair request.
func FormatInvoiceNumber(createdAt time.Time, id int64) (string, error) {
	return Format(DefaultInvoiceNumberTemplate, createdAt, id)
}

// FormatRepairReference renders the display reference of a repair request.
func FormatRepairReference(createdAt time.Time, id int64) (string, error) {
	return Format(DefaultRepairReferenceTemplate, createdAt, id)
}

// Format expands {YYYY} {YY} {MM} {DD} {SEQ} and {SEQn} tokens.
// Dates are taken in the timestamp's own location.
func Format(template string, at time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid sequence: %d", seq)
	}
	if at.IsZero() {
		return "", fmt.Errorf("missing date for sequence %d", seq)
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", at.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", at.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", at.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", at.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in number format: %s", out)
	}
	return out, nil
}
