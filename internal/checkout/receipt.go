package checkout

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var receiptPrinter = message.NewPrinter(language.English)

// Receipt renders a committed sale as a plain-text slip with grouped
// thousands in the amounts.
func Receipt(sale Sale) string {
	var b strings.Builder
	receiptPrinter.Fprintf(&b, "SALE #%d  %s\n", sale.ID, sale.SoldAt.Format("2006-01-02 15:04"))
	for _, it := range sale.Items {
		receiptPrinter.Fprintf(&b, "%s  %d x %.2f", it.ProductName, it.Quantity, it.UnitPrice)
		if it.Discount > 0 {
			receiptPrinter.Fprintf(&b, " (-%.2f)", it.Discount)
		}
		receiptPrinter.Fprintf(&b, " = %.2f\n", it.LineTotal)
	}
	if sale.Discount > 0 {
		receiptPrinter.Fprintf(&b, "DISCOUNT  -%.2f\n", sale.Discount)
	}
	receiptPrinter.Fprintf(&b, "TOTAL  %.2f\n", sale.Total)
	return b.String()
}
