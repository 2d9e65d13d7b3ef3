package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/phpdave11/gofpdf"
)

// VoucherData is everything printed on a travel voucher.
type VoucherData struct {
	BusinessName    string
	BusinessEmail   string
	BusinessPhone   string
	BusinessAddress string

	ReferenceCode  string
	Status         string
	ServiceType    string
	PackageTitle   string
	Location       string
	Duration       string
	TravelDate     string
	NumberOfPeople int
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	PickupLocation string
	DropLocation   string
	TotalAmount    string
	PaidAmount     string
	Balance        string
	IssuedAt       string
}

type VoucherRenderer interface {
	Render(ctx context.Context, data VoucherData) ([]byte, error)
}

// PDFRenderer draws the voucher directly with gofpdf.
type PDFRenderer struct{}

func (PDFRenderer) Render(_ context.Context, d VoucherData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Travel Voucher "+d.ReferenceCode, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, tr(d.BusinessName))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(strings.Join(nonEmpty(d.BusinessEmail, d.BusinessPhone), "  |  ")))
	pdf.Ln(6)
	if d.BusinessAddress != "" {
		pdf.Cell(0, 6, tr(d.BusinessAddress))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "TRAVEL VOUCHER")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Reference: "+d.ReferenceCode+"    Status: "+d.Status)
	pdf.Ln(10)

	rows := [][2]string{
		{"Service", d.ServiceType},
		{"Package", d.PackageTitle},
		{"Destination", d.Location},
		{"Duration", d.Duration},
		{"Travel date", d.TravelDate},
		{"Travellers", fmt.Sprintf("%d", d.NumberOfPeople)},
		{"Lead traveller", d.ContactName},
		{"Email", d.ContactEmail},
		{"Phone", d.ContactPhone},
		{"Pickup", d.PickupLocation},
		{"Drop", d.DropLocation},
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Total: "+d.TotalAmount)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Paid: "+d.PaidAmount)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Balance due: "+d.Balance)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Please carry this voucher and a valid photo ID when you travel. Issued "+d.IssuedAt+".", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ChromeRenderer fills an HTML template and prints it to PDF with headless Chrome.
type ChromeRenderer struct {
	tmpl *template.Template
}

func NewChromeRenderer(templatePath string) (*ChromeRenderer, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("parse voucher template: %w", err)
	}
	return &ChromeRenderer{tmpl: tmpl}, nil
}

func (r *ChromeRenderer) Render(ctx context.Context, d VoucherData) ([]byte, error) {
	var rendered bytes.Buffer
	if err := r.tmpl.Execute(&rendered, d); err != nil {
		return nil, err
	}
	htmlContent := rendered.String()

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
	defer cancelTimeout()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
