// Package ordermsg renders a basket and customer details into the text
// payload of a messaging deep link.
//
// Line breaks are written as the literal sequence "%0A". Amounts have two
// decimals and are rounded half up.
package ordermsg

import (
	"strconv"
	"strings"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	LineBreak = "%0A"

	DefaultStoreName      = "SATESMA FOUNTAIN VENTURES"
	DefaultCurrencySymbol = "₦"
)

var valueEscaper = strings.NewReplacer(
	"%", "%25",
	"&", "%26",
	"#", "%23",
	"+", "%2B",
	"\r\n", LineBreak,
	"\r", LineBreak,
	"\n", LineBreak,
)

var lineBreakDecoder = strings.NewReplacer(
	LineBreak, "\n",
	"%25", "%",
	"%26", "&",
	"%23", "#",
	"%2B", "+",
)

type Formatter struct {
	storeName      string
	currencySymbol string
}

// New returns a Formatter. Empty arguments fall back to the defaults.
func New(storeName, currencySymbol string) Formatter {
	if strings.TrimSpace(storeName) == "" {
		storeName = DefaultStoreName
	}
	if currencySymbol == "" {
		currencySymbol = DefaultCurrencySymbol
	}
	return Formatter{storeName, currencySymbol}
}

// Format renders the order message. An empty basket still yields a valid
// message; callers decide whether to send it.
func (f Formatter) Format(
	b domain.Basket, d domain.CustomerDetails,
) string {
	d = d.Normalize()

	var sb strings.Builder
	sb.WriteString("*" + escape(f.storeName) + " ORDER*")
	sb.WriteString(LineBreak + LineBreak)
	sb.WriteString("*Client:* " + escape(d.Name))
	sb.WriteString(LineBreak)
	sb.WriteString("*Items:*")
	sb.WriteString(LineBreak)

	for i, li := range b.Items {
		if i > 0 {
			sb.WriteString(LineBreak)
		}
		sb.WriteString(ItemLine(li))
	}

	sb.WriteString(LineBreak + LineBreak)
	sb.WriteString("*Total Value:* ")
	sb.WriteString(escape(f.currencySymbol) + Amount(b.Subtotal()))

	if d.HasNotes() {
		sb.WriteString(LineBreak + LineBreak)
		sb.WriteString("*Client Notes:* " + escape(d.Notes))
	}
	return sb.String()
}

// ItemLine renders "<name> x<quantity> (<line total>)".
func ItemLine(li domain.LineItem) string {
	return escape(li.Name) +
		" x" + strconv.Itoa(li.Quantity) +
		" (" + Amount(li.LineTotal()) + ")"
}

// Amount formats v with exactly two decimals, rounding half away from zero.
func Amount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// Decode turns a formatted payload back into plain multi-line text.
func Decode(msg string) string {
	return lineBreakDecoder.Replace(msg)
}

func escape(s string) string {
	return valueEscaper.Replace(s)
}
