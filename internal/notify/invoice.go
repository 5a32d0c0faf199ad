package notify

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"wheeldeal/internal/domain"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var invoiceTemplate = template.Must(template.New("invoice.html").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).ParseFS(templateFS, "templates/invoice.html"))

// InvoiceRenderer produces the PDF invoice of an order.
type InvoiceRenderer interface {
	Render(ctx context.Context, o *domain.Order) ([]byte, error)
}

// InvoiceHTML renders the printable invoice page, with the order number
// embedded as a QR code.
func InvoiceHTML(o *domain.Order) (string, error) {
	png, err := qrcode.Encode(o.OrderNo, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qr code: %w", err)
	}
	data := struct {
		Order  *domain.Order
		QRCode template.URL
	}{
		Order:  o,
		QRCode: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
	}
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}

// ChromePDF prints invoices with a headless Chrome.
type ChromePDF struct {
	timeout   time.Duration
	allocOpts []chromedp.ExecAllocatorOption
}

func NewChromePDF(timeout time.Duration) *ChromePDF {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	return &ChromePDF{timeout: timeout, allocOpts: opts}
}

func (c *ChromePDF) Render(ctx context.Context, o *domain.Order) ([]byte, error) {
	html, err := InvoiceHTML(o)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print invoice %s: %w", o.OrderNo, err)
	}
	return pdf, nil
}
