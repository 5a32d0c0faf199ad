package notify

import (
	"context"
	"fmt"

	"wheeldeal/internal/domain"
)

const subjectPrefix = "[WHEEL DEAL SHOP] "

type orderLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

// Handler turns jobs into customer emails.
type Handler struct {
	orders   orderLookup
	mailer   Mailer
	invoices InvoiceRenderer
}

func NewHandler(orders orderLookup, mailer Mailer, invoices InvoiceRenderer) *Handler {
	return &Handler{orders: orders, mailer: mailer, invoices: invoices}
}

func (h *Handler) Handle(ctx context.Context, job Job) error {
	o, err := h.orders.GetByID(ctx, job.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", job.OrderID, err)
	}
	switch job.Kind {
	case KindOrderCreated:
		return h.mailer.Send(ctx, OrderCreatedMessage(o))
	case KindPaymentCompleted:
		pdf, err := h.invoices.Render(ctx, o)
		if err != nil {
			return err
		}
		return h.mailer.Send(ctx, PaymentReceiptMessage(o, pdf))
	default:
		return fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

func OrderCreatedMessage(o *domain.Order) Message {
	return Message{
		To:      o.Email,
		Subject: subjectPrefix + "Order No. " + o.OrderNo,
		Body: fmt.Sprintf("Dear %s,\n\nYou have successfully placed an order. Your order number is %s.",
			o.FirstName, o.OrderNo),
	}
}

func PaymentReceiptMessage(o *domain.Order, invoice []byte) Message {
	greeting := o.FirstName
	if greeting == "" {
		greeting = o.LastName
	}
	if greeting == "" {
		greeting = "there"
	}
	return Message{
		To:      o.Email,
		Subject: subjectPrefix + "Wheel Deal Shop - Invoice No. " + o.OrderNo,
		Body:    fmt.Sprintf("Hi, %s.\n\nPlease find attached the invoice for your recent purchase.", greeting),
		Attachments: []Attachment{{
			Name:        InvoiceFilename(o),
			ContentType: "application/pdf",
			Data:        invoice,
		}},
	}
}

func InvoiceFilename(o *domain.Order) string {
	return "order-" + o.OrderNo + ".pdf"
}
