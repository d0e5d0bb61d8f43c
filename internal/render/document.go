package render

import (
	"html/template"
	"io"

	"github.com/noah-isme/backend-gstbill/internal/gst"
	"github.com/noah-isme/backend-gstbill/internal/invoice"
	"github.com/noah-isme/backend-gstbill/internal/profile"
)

// DocumentLine is one formatted row of the printed invoice table.
type DocumentLine struct {
	Position int32
	Name     string
	HSNCode  string
	Unit     string
	Quantity int64
	Price    string
	Rate     string
	Discount string
	Taxable  string
	Total    string
}

// Document is the view model handed to the invoice template.
type Document struct {
	Seller        profile.BusinessProfile
	SellerGSTIN   string
	Number        string
	Status        invoice.Status
	IssueDate     string
	DueDate       string
	BuyerName     string
	BuyerGSTIN    string
	BuyerAddress  string
	BuyerState    string
	Lines         []DocumentLine
	IntraState    bool
	SubTotal      string
	TotalDiscount string
	CGST          string
	SGST          string
	IGST          string
	GrandTotal    string
	AmountInWords string
}

// BuildDocument formats a saved invoice and the issuer profile for printing.
func BuildDocument(seller profile.BusinessProfile, inv invoice.Invoice) Document {
	doc := Document{
		Seller:        seller,
		SellerGSTIN:   seller.GSTIN,
		Number:        inv.Number,
		Status:        inv.Status,
		IssueDate:     inv.IssueDate.Format("02 Jan 2006"),
		DueDate:       inv.DueDate.Format("02 Jan 2006"),
		BuyerName:     inv.CustomerName,
		BuyerGSTIN:    inv.CustomerGSTIN,
		BuyerAddress:  inv.CustomerAddress,
		BuyerState:    inv.CustomerState,
		IntraState:    inv.Regime == gst.RegimeCGSTSGST,
		SubTotal:      FormatINR(inv.SubTotal),
		TotalDiscount: FormatINR(inv.TotalDiscount),
		GrandTotal:    FormatINR(inv.GrandTotal),
		AmountInWords: AmountInWords(inv.GrandTotal),
	}
	if doc.IntraState {
		totals := gst.Totals{TotalGST: inv.TotalGST}
		cgst, sgst := totals.Halves()
		doc.CGST = FormatINR(cgst)
		doc.SGST = FormatINR(sgst)
	} else {
		doc.IGST = FormatINR(inv.TotalGST)
	}
	for _, line := range inv.Lines {
		doc.Lines = append(doc.Lines, DocumentLine{
			Position: line.Position + 1,
			Name:     line.Name,
			HSNCode:  line.HSNCode,
			Unit:     line.Unit,
			Quantity: line.Quantity,
			Price:    FormatINR(line.Price),
			Rate:     FormatPercent(line.RateBps),
			Discount: FormatINR(line.DiscountAmount),
			Taxable:  FormatINR(line.TaxableAmount),
			Total:    FormatINR(line.Total),
		})
	}
	return doc
}

var documentTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Tax Invoice {{.Number}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; letter-spacing: 0.08em; }
table { width: 100%; border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #999; padding: 0.4rem 0.6rem; font-size: 0.85rem; }
th { background: #f0f0f0; text-align: left; }
td.num, th.num { text-align: right; }
.parties { display: flex; justify-content: space-between; margin-top: 1rem; }
.totals td { font-weight: bold; }
.words { margin-top: 1rem; font-style: italic; }
@media print { body { margin: 0.5rem; } }
</style>
</head>
<body>
<h1>TAX INVOICE</h1>
<p><strong>{{.Number}}</strong> &mdash; issued {{.IssueDate}}, due {{.DueDate}} ({{.Status}})</p>
<div class="parties">
<div>
<h2>Seller</h2>
<p>{{.Seller.Name}}<br>{{.Seller.Address}}<br>{{.Seller.City}}, {{.Seller.State}} {{.Seller.Pincode}}</p>
{{if .SellerGSTIN}}<p>GSTIN: {{.SellerGSTIN}}</p>{{end}}
</div>
<div>
<h2>Bill To</h2>
<p>{{.BuyerName}}<br>{{.BuyerAddress}}<br>{{.BuyerState}}</p>
{{if .BuyerGSTIN}}<p>GSTIN: {{.BuyerGSTIN}}</p>{{end}}
</div>
</div>
<table>
<thead>
<tr>
<th>#</th><th>Item</th><th>HSN/SAC</th><th class="num">Qty</th><th>Unit</th>
<th class="num">Rate</th><th class="num">GST</th><th class="num">Discount</th>
<th class="num">Taxable</th><th class="num">Total</th>
</tr>
</thead>
<tbody>
{{range .Lines}}
<tr>
<td>{{.Position}}</td><td>{{.Name}}</td><td>{{.HSNCode}}</td>
<td class="num">{{.Quantity}}</td><td>{{.Unit}}</td>
<td class="num">{{.Price}}</td><td class="num">{{.Rate}}</td>
<td class="num">{{.Discount}}</td><td class="num">{{.Taxable}}</td>
<td class="num">{{.Total}}</td>
</tr>
{{end}}
</tbody>
<tfoot>
<tr><td colspan="8">Sub Total</td><td class="num" colspan="2">{{.SubTotal}}</td></tr>
<tr><td colspan="8">Total Discount</td><td class="num" colspan="2">{{.TotalDiscount}}</td></tr>
{{if .IntraState}}
<tr><td colspan="8">CGST</td><td class="num" colspan="2">{{.CGST}}</td></tr>
<tr><td colspan="8">SGST</td><td class="num" colspan="2">{{.SGST}}</td></tr>
{{else}}
<tr><td colspan="8">IGST</td><td class="num" colspan="2">{{.IGST}}</td></tr>
{{end}}
<tr class="totals"><td colspan="8">Grand Total</td><td class="num" colspan="2">{{.GrandTotal}}</td></tr>
</tfoot>
</table>
<p class="words">{{.AmountInWords}}</p>
{{if .Seller.Terms}}<p><strong>Terms:</strong> {{.Seller.Terms}}</p>{{end}}
{{if .Seller.BankName}}<p><strong>Bank:</strong> {{.Seller.BankName}}, A/C {{.Seller.AccountNumber}}, IFSC {{.Seller.IFSC}}</p>{{end}}
</body>
</html>
`))

// WriteDocument renders the document to w.
func WriteDocument(w io.Writer, doc Document) error {
	return documentTemplate.Execute(w, doc)
}
