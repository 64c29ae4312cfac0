// Package billpdf renders an invoice view as a printable PDF document.
package billpdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/JrVava/laxmanBackend/pkg/billing"
)

// Render produces an A4 PDF for one invoice: customer block, line-item
// table and the computed totals footer.
func Render(view billing.InvoiceView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Invoice #%d", view.BillingDetail.ID))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%s %s", view.Customer.Title, view.Customer.Name))
	pdf.Ln(6)
	pdf.Cell(0, 6, view.Customer.Location)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Billing date: "+view.BillingDetail.BillingDate)
	pdf.Ln(10)

	// item table header
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(80, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Rate", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, "Unit", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, it := range view.Billings {
		pdf.CellFormat(80, 8, it.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", it.Qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", it.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, it.Unit, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", it.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 11)
	writeTotal(pdf, "Tax", view.BillingDetail.Tax)
	writeTotal(pdf, "Packaging", view.BillingDetail.Packaging)
	pdf.SetFont("Arial", "B", 12)
	writeTotal(pdf, "Grand Total", view.BillingDetail.GrandTotal)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTotal(pdf *gofpdf.Fpdf, label string, value float64) {
	pdf.CellFormat(150, 8, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", value), "", 1, "R", false, 0, "")
}
