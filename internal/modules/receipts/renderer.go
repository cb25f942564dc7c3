package receipts

import (
	"bytes"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/judychuepursuit/change-4-change-back/internal/shared/money"
)

type Receipt struct {
	DonorEmail     string
	DonorFirstName string
	DonorLastName  string
	CharityName    string
	Amount         decimal.Decimal // major units
	Currency       string
	Frequency      string
	Reference      string // processor transaction id
	CreatedAt      time.Time
}

// Renderer produces the receipt document. The default renders HTML; a PDF
// engine stays behind this interface as an external collaborator.
type Renderer interface {
	Render(r Receipt) (doc []byte, filename, contentType string, err error)
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<html>
  <body style="font-family: sans-serif;">
    <h2>Donation Receipt</h2>
    <p>Dear {{.DonorFirstName}} {{.DonorLastName}},</p>
    <p>Thank you for your {{.Frequency}} donation of <strong>{{.FormattedAmount}}</strong> to <strong>{{.CharityName}}</strong>.</p>
    <p><strong>Reference:</strong> {{.Reference}}</p>
    <p><strong>Date:</strong> {{.Date}}</p>
    <p>The Change 4 Change Team</p>
  </body>
</html>
`))

type HTMLRenderer struct{}

func (HTMLRenderer) Render(r Receipt) ([]byte, string, string, error) {
	data := struct {
		Receipt
		FormattedAmount string
		Date            string
	}{
		Receipt:         r,
		FormattedAmount: money.Format(r.Currency, r.Amount),
		Date:            r.CreatedAt.Format("January 2, 2006"),
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return nil, "", "", err
	}
	return buf.Bytes(), "receipt.html", "text/html", nil
}
