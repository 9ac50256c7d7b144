// Package invoice renders paid orders as PDF tax invoices.
package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/Prathap331/GB-Backend/internal/domain/order"
)

// Seller identifies the invoicing entity printed in the header.
type Seller struct {
	Name    string
	Address string
	GSTIN   string
	Email   string
}

// Renderer produces invoice PDFs. Safe for concurrent use; each render builds
// its own document.
type Renderer struct {
	seller Seller
}

// NewRenderer creates a Renderer for the given seller.
func NewRenderer(seller Seller) *Renderer {
	return &Renderer{seller: seller}
}

// Render produces the invoice PDF for a completed order. Orders that have not
// completed payment are not invoiceable.
func (r *Renderer) Render(o *order.Order, customerName string) ([]byte, error) {
	if o.PaymentStatus != order.PaymentCompleted {
		return nil, order.ErrInvoiceNotReady
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	r.header(pdf, o)
	r.billTo(pdf, o, customerName)
	r.itemsTable(pdf, o)
	r.totals(pdf, o)
	r.luckyNumbers(pdf, o)
	r.footer(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render invoice pdf")
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(pdf *fpdf.Fpdf, o *order.Order) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "TAX INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, r.seller.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range strings.Split(r.seller.Address, "\n") {
		pdf.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
	}
	if r.seller.GSTIN != "" {
		pdf.CellFormat(0, 4.5, "GSTIN: "+r.seller.GSTIN, "", 1, "L", false, 0, "")
	}
	if r.seller.Email != "" {
		pdf.CellFormat(0, 4.5, "Email: "+r.seller.Email, "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 5, fmt.Sprintf("Invoice No: INV-%06d", o.ID), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 5, "Date: "+o.CreatedAt.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 5, fmt.Sprintf("Order ID: %d", o.ID), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 5, "Payment: "+string(o.PaymentMethod), "", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func (r *Renderer) billTo(pdf *fpdf.Fpdf, o *order.Order, customerName string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 5, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if customerName != "" {
		pdf.CellFormat(0, 4.5, customerName, "", 1, "L", false, 0, "")
	}
	for _, line := range strings.Split(o.DeliveryAddress, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			pdf.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
}

func (r *Renderer) itemsTable(pdf *fpdf.Fpdf, o *order.Order) {
	const (
		wName = 80.0
		wVar  = 35.0
		wQty  = 15.0
		wRate = 30.0
		wAmt  = 30.0
	)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(wName, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(wVar, 7, "Variant", "1", 0, "L", true, 0, "")
	pdf.CellFormat(wQty, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(wRate, 7, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(wAmt, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range o.Items {
		variant := it.Size
		if it.Color != "" {
			if variant != "" {
				variant += " / "
			}
			variant += it.Color
		}
		pdf.CellFormat(wName, 6, truncate(it.ProductName, 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(wVar, 6, variant, "1", 0, "L", false, 0, "")
		pdf.CellFormat(wQty, 6, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(wRate, 6, money(it.PricePerUnit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(wAmt, 6, money(it.Subtotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}

func (r *Renderer) totals(pdf *fpdf.Fpdf, o *order.Order) {
	row := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(130, 5.5, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5.5, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 5.5, money(v), "", 1, "R", false, 0, "")
	}

	row("Subtotal", o.Subtotal, false)
	if o.TotalDiscount.IsPositive() {
		row("Discount", o.TotalDiscount.Neg(), false)
	}
	// GST is split equally between central and state components.
	half := o.GSTAmount.Div(decimal.NewFromInt(2)).Round(2)
	row("CGST (2.5%)", half, false)
	row("SGST (2.5%)", o.GSTAmount.Sub(half), false)
	row("Shipping", o.ShippingFee, false)
	if o.CODFee.IsPositive() {
		row("COD Fee", o.CODFee, false)
	}
	row("Grand Total", o.TotalAmount, true)
	pdf.Ln(4)
}

func (r *Renderer) luckyNumbers(pdf *fpdf.Fpdf, o *order.Order) {
	if len(o.LuckyNumbers) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 5, "Lucky Numbers", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, strings.Join(o.LuckyNumbers, "   "), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 4.5, "Contest ID: "+o.ContestID, "", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func (r *Renderer) footer(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 4.5, "This is a computer generated invoice and does not require a signature.", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 4.5, "Goods once sold are returnable only per the published return policy.", "", 1, "L", false, 0, "")
}

func money(v decimal.Decimal) string {
	return "Rs. " + v.StringFixed(2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
