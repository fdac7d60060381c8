package infra

// pdf.go — Document PDF rendering using go-pdf/fpdf.
// Generates an A4 page with:
//   - Company header (name, tax id, address)
//   - Document title, number and dates
//   - Customer snapshot block (billed from the frozen copy, not the live row)
//   - Item table (name, quantity, unit price, tax rate, line total)
//   - Subtotal / tax / bold total
//   - Notes and terms footer
//
// The output file is saved to storagePath/{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invoicehub/internal/model"

	"github.com/go-pdf/fpdf"
)

var pdfTitles = map[model.DocumentType]string{
	model.DocumentTypeQuotation:  "QUOTATION",
	model.DocumentTypeInvoice:    "INVOICE",
	model.DocumentTypeCreditNote: "CREDIT NOTE",
	model.DocumentTypeDebitNote:  "DEBIT NOTE",
}

// GenerateDocumentPDF renders a billing document to PDF.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateDocumentPDF(doc *model.Document, company *model.Company, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	// Document numbers may contain a prefix separator; keep file names flat.
	fileName := strings.ReplaceAll(doc.Number, string(os.PathSeparator), "_") + ".pdf"
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Company header ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, company.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if company.TaxID != nil {
		pdf.CellFormat(contentW, 5, "Tax ID: "+*company.TaxID, "", 1, "L", false, 0, "")
	}
	if company.Address != nil {
		pdf.CellFormat(contentW, 5, *company.Address, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Title and number ─────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 8, pdfTitles[doc.Type], "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, doc.Number, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Issued: "+time.Time(doc.IssueDate).Format("2006-01-02"), "", 1, "L", false, 0, "")
	if doc.DueDate != nil {
		pdf.CellFormat(contentW, 5, "Due: "+time.Time(*doc.DueDate).Format("2006-01-02"), "", 1, "L", false, 0, "")
	}
	if doc.ValidUntil != nil {
		pdf.CellFormat(contentW, 5, "Valid until: "+time.Time(*doc.ValidUntil).Format("2006-01-02"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Customer snapshot ────────────────────────────────────────────────────
	if doc.Snapshot.Name != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "Bill to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, doc.Snapshot.Name, "", 1, "L", false, 0, "")
		if doc.Snapshot.Address != nil {
			pdf.CellFormat(contentW, 5, *doc.Snapshot.Address, "", 1, "L", false, 0, "")
		}
		if doc.Snapshot.TaxID != nil {
			pdf.CellFormat(contentW, 5, "Tax ID: "+*doc.Snapshot.TaxID, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	// ── Item table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.40 // name
	col2 := contentW * 0.14 // qty
	col3 := contentW * 0.16 // unit price
	col4 := contentW * 0.12 // tax %
	col5 := contentW * 0.18 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 6, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Tax %", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range doc.Items {
		name := item.Name
		if len(name) > 40 {
			name = name[:39] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 6, item.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, item.TaxRate.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, item.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(col1+col2+col3, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, doc.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2+col3, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Tax:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, doc.TaxTotal.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 8, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 8, "Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 8, doc.Total.StringFixed(2)+" "+doc.Currency, "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	if doc.Notes != nil && *doc.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 4, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(contentW, 4, *doc.Notes, "", "L", false)
	}
	if doc.Terms != nil && *doc.Terms != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 4, "Terms", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(contentW, 4, *doc.Terms, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
